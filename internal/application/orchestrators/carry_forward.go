package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domain "compass/internal/domain/goal"
	"compass/internal/domain/week"
)

// CarryForwardStore defines the goal store interface needed for carry.
type CarryForwardStore interface {
	ListByWeek(ctx context.Context, weekStartDate string) ([]domain.WeeklyGoal, error)
	Add(ctx context.Context, g domain.WeeklyGoal) error
}

// CarryForwardInput carries input for the recurring carry engine.
type CarryForwardInput struct {
	TargetWeek string // week key the clones land in
}

// CarryForwardDeps holds dependencies for ExecuteCarryForward.
type CarryForwardDeps struct {
	GoalStore CarryForwardStore
	NewID     func() string
	Now       func() time.Time // injectable for testing
}

// ExecuteCarryForward clones the previous week's eligible recurring goals
// into the target week and returns how many were carried. Goals already
// present in the target week with the same (roleId, goalText) are skipped,
// which is what makes a re-run (fresh process, marker lost) safe.
// PRE: TargetWeek is a valid week key
// POST: Each surviving candidate is persisted with a fresh id, reset
// status, cleared calendar link and decremented carry countdown
// INVARIANT: Never creates a (roleId, goalText) duplicate within the week
func ExecuteCarryForward(ctx context.Context, input CarryForwardInput, deps CarryForwardDeps) (int, error) {
	prevWeek, err := week.PrevKey(input.TargetWeek)
	if err != nil {
		return 0, fmt.Errorf("carry forward: %w", err)
	}

	prevGoals, err := deps.GoalStore.ListByWeek(ctx, prevWeek)
	if err != nil {
		return 0, fmt.Errorf("carry forward: load week %s: %w", prevWeek, err)
	}
	if len(prevGoals) == 0 {
		return 0, nil
	}

	targetGoals, err := deps.GoalStore.ListByWeek(ctx, input.TargetWeek)
	if err != nil {
		return 0, fmt.Errorf("carry forward: load week %s: %w", input.TargetWeek, err)
	}
	existing := make(map[string]bool, len(targetGoals))
	for _, g := range targetGoals {
		existing[dedupKey(g)] = true
	}

	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	carried := 0
	for _, g := range prevGoals {
		if !g.CarriesInto(input.TargetWeek) {
			continue
		}
		if existing[dedupKey(g)] {
			continue
		}
		clone := g.CarryClone(deps.NewID(), input.TargetWeek, now)
		if err := deps.GoalStore.Add(ctx, clone); err != nil {
			// Remaining clones are abandoned; carry is a convenience and
			// the dedup step makes the next attempt safe.
			return carried, fmt.Errorf("carry forward: add clone of %s: %w", g.ID, err)
		}
		existing[dedupKey(clone)] = true
		carried++
	}

	if carried > 0 {
		slog.Info("carry_forward_done", "target_week", input.TargetWeek, "carried", carried)
	}
	return carried, nil
}

// dedupKey is the composite identity used to spot an already-carried goal.
func dedupKey(g domain.WeeklyGoal) string {
	return g.RoleID + "\x00" + g.GoalText
}
