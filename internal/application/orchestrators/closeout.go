package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"compass/internal/adapters/rowstore"
	goaldomain "compass/internal/domain/goal"
	refdomain "compass/internal/domain/reflection"
	"compass/internal/domain/week"
)

// ErrNotLocked indicates an undo on a week that has no reflection.
var ErrNotLocked = errors.New("week is not locked")

// CloseoutGoalStore is the goal store slice needed to move goals forward.
type CloseoutGoalStore interface {
	ListByWeek(ctx context.Context, weekStartDate string) ([]goaldomain.WeeklyGoal, error)
	Update(ctx context.Context, g goaldomain.WeeklyGoal) error
}

// CloseoutReflectionStore is the reflection store slice the state machine
// drives. GetByWeek must return rowstore.ErrNotFound for an open week.
type CloseoutReflectionStore interface {
	GetByWeek(ctx context.Context, weekStartDate string) (refdomain.WeeklyReflection, error)
	Add(ctx context.Context, r refdomain.WeeklyReflection) error
	Update(ctx context.Context, r refdomain.WeeklyReflection) error
	Delete(ctx context.Context, id string) error
}

// CloseoutDeps holds dependencies for the closeout operations.
type CloseoutDeps struct {
	GoalStore       CloseoutGoalStore
	ReflectionStore CloseoutReflectionStore
	NewID           func() string
	Now             func() time.Time // injectable for testing
}

func (d CloseoutDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// ReflectionText is the user-entered content of a closeout reflection.
type ReflectionText struct {
	WentWell    string
	DidntGoWell string
	Intentions  string
	WeekRating  *int
}

// CloseOutInput carries input for ExecuteCloseOut.
type CloseOutInput struct {
	Week        string
	MoveGoalIDs []string // incomplete goals the user chose to push forward
	Reflection  ReflectionText
}

// IsLocked reports whether the week is closed out. Lock state is derived,
// never stored: a week is locked iff a reflection exists for its key.
func IsLocked(ctx context.Context, store CloseoutReflectionStore, weekStartDate string) (bool, error) {
	_, err := store.GetByWeek(ctx, weekStartDate)
	if errors.Is(err, rowstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ExecuteCloseOut finalizes a week: the selected goals are moved into the
// successor week, then the week's reflection is created or updated. The
// two steps are sequential remote effects with no shared rollback; if the
// reflection write fails after goals moved, the moves stand.
// PRE: Week is a valid week key
// POST: Selected goals live in the next week; the week is Locked
func ExecuteCloseOut(ctx context.Context, input CloseOutInput, deps CloseoutDeps) error {
	if err := moveGoalsForward(ctx, input.Week, input.MoveGoalIDs, deps); err != nil {
		return err
	}
	if err := saveReflection(ctx, input.Week, input.Reflection, deps); err != nil {
		return err
	}
	slog.Info("week_closed_out", "week", input.Week, "moved_goals", len(input.MoveGoalIDs))
	return nil
}

// ExecuteSkip pushes the selected goals into the successor week without
// writing a reflection, so the week stays Open and can be closed out (or
// skipped again) later.
func ExecuteSkip(ctx context.Context, weekStartDate string, moveGoalIDs []string, deps CloseoutDeps) error {
	if err := moveGoalsForward(ctx, weekStartDate, moveGoalIDs, deps); err != nil {
		return err
	}
	slog.Info("week_skipped", "week", weekStartDate, "moved_goals", len(moveGoalIDs))
	return nil
}

// ExecuteUndo deletes the week's reflection, transitioning Locked back to
// Open. Goals moved during the original closeout are not moved back.
func ExecuteUndo(ctx context.Context, weekStartDate string, deps CloseoutDeps) error {
	r, err := deps.ReflectionStore.GetByWeek(ctx, weekStartDate)
	if errors.Is(err, rowstore.ErrNotFound) {
		return fmt.Errorf("undo closeout of %s: %w", weekStartDate, ErrNotLocked)
	}
	if err != nil {
		return fmt.Errorf("undo closeout of %s: %w", weekStartDate, err)
	}
	if err := deps.ReflectionStore.Delete(ctx, r.ID); err != nil {
		return fmt.Errorf("undo closeout of %s: %w", weekStartDate, err)
	}
	slog.Info("closeout_undone", "week", weekStartDate)
	return nil
}

// ShouldPromptCloseout reports whether the week before the given one is
// still Open, meaning the user should be nudged to close it out. This is
// an auxiliary read-only check: any failure is swallowed and reported as
// "don't prompt", never blocking navigation.
func ShouldPromptCloseout(ctx context.Context, store CloseoutReflectionStore, currentWeek string) bool {
	prev, err := week.PrevKey(currentWeek)
	if err != nil {
		return false
	}
	_, err = store.GetByWeek(ctx, prev)
	if errors.Is(err, rowstore.ErrNotFound) {
		return true
	}
	if err != nil {
		slog.Warn("closeout_prompt_check_failed", "week", prev, "error", err.Error())
	}
	return false
}

func moveGoalsForward(ctx context.Context, weekStartDate string, ids []string, deps CloseoutDeps) error {
	if len(ids) == 0 {
		return nil
	}
	nextWeek, err := week.NextKey(weekStartDate)
	if err != nil {
		return fmt.Errorf("close out %s: %w", weekStartDate, err)
	}
	goals, err := deps.GoalStore.ListByWeek(ctx, weekStartDate)
	if err != nil {
		return fmt.Errorf("close out %s: load goals: %w", weekStartDate, err)
	}
	byID := make(map[string]goaldomain.WeeklyGoal, len(goals))
	for _, g := range goals {
		byID[g.ID] = g
	}
	now := deps.now()
	for _, id := range ids {
		g, ok := byID[id]
		if !ok {
			return fmt.Errorf("close out %s: goal %q: %w", weekStartDate, id, rowstore.ErrNotFound)
		}
		g.WeekStartDate = nextWeek
		g.UpdatedAt = now
		if err := deps.GoalStore.Update(ctx, g); err != nil {
			return fmt.Errorf("close out %s: move goal %s: %w", weekStartDate, id, err)
		}
	}
	return nil
}

func saveReflection(ctx context.Context, weekStartDate string, text ReflectionText, deps CloseoutDeps) error {
	now := deps.now()
	existing, err := deps.ReflectionStore.GetByWeek(ctx, weekStartDate)
	switch {
	case err == nil:
		existing.WentWell = text.WentWell
		existing.DidntGoWell = text.DidntGoWell
		existing.Intentions = text.Intentions
		existing.WeekRating = text.WeekRating
		existing.UpdatedAt = now
		if err := deps.ReflectionStore.Update(ctx, existing); err != nil {
			return fmt.Errorf("close out %s: update reflection: %w", weekStartDate, err)
		}
		return nil
	case errors.Is(err, rowstore.ErrNotFound):
		r := refdomain.WeeklyReflection{
			ID:            deps.NewID(),
			WeekStartDate: weekStartDate,
			WentWell:      text.WentWell,
			DidntGoWell:   text.DidntGoWell,
			Intentions:    text.Intentions,
			WeekRating:    text.WeekRating,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := deps.ReflectionStore.Add(ctx, r); err != nil {
			return fmt.Errorf("close out %s: save reflection: %w", weekStartDate, err)
		}
		return nil
	default:
		return fmt.Errorf("close out %s: check reflection: %w", weekStartDate, err)
	}
}
