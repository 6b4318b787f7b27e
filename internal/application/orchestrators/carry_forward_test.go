package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "compass/internal/domain/goal"
)

// mockGoalStore is an in-memory goal store keyed by week.
type mockGoalStore struct {
	goals  []domain.WeeklyGoal
	addErr error
	adds   int
}

func (m *mockGoalStore) ListByWeek(_ context.Context, weekStartDate string) ([]domain.WeeklyGoal, error) {
	var out []domain.WeeklyGoal
	for _, g := range m.goals {
		if g.WeekStartDate == weekStartDate {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockGoalStore) Add(_ context.Context, g domain.WeeklyGoal) error {
	m.adds++
	if m.addErr != nil {
		return m.addErr
	}
	m.goals = append(m.goals, g)
	return nil
}

func carryDeps(store *mockGoalStore) CarryForwardDeps {
	n := 0
	return CarryForwardDeps{
		GoalStore: store,
		NewID: func() string {
			n++
			return "new-" + string(rune('a'+n-1))
		},
		Now: func() time.Time { return time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC) },
	}
}

func intp(v int) *int { return &v }

func TestExecuteCarryForward(t *testing.T) {
	store := &mockGoalStore{goals: []domain.WeeklyGoal{
		{ID: "g1", WeekStartDate: "2025-06-02", RoleID: "r1", GoalText: "run 3x",
			Quadrant: 2, Status: domain.StatusInProgress, Recurring: true,
			CalendarEventID: "evt-1", CalendarSource: domain.CalendarGoogle},
		{ID: "g2", WeekStartDate: "2025-06-02", RoleID: "r1", GoalText: "ship report",
			Quadrant: 1, Status: domain.StatusComplete, Recurring: true}, // complete: never carries
		{ID: "g3", WeekStartDate: "2025-06-02", RoleID: "r2", GoalText: "one-off errand",
			Quadrant: 3, Status: domain.StatusNotStarted}, // not recurring
	}}

	carried, err := ExecuteCarryForward(context.Background(), CarryForwardInput{TargetWeek: "2025-06-09"}, carryDeps(store))
	if err != nil {
		t.Fatalf("ExecuteCarryForward: %v", err)
	}
	if carried != 1 {
		t.Fatalf("carried = %d, want 1", carried)
	}

	target, _ := store.ListByWeek(context.Background(), "2025-06-09")
	if len(target) != 1 {
		t.Fatalf("target week goals = %+v, want exactly the clone", target)
	}
	clone := target[0]
	if clone.ID == "g1" {
		t.Error("clone must get a fresh id")
	}
	if clone.Status != domain.StatusNotStarted {
		t.Errorf("clone status = %q, want reset to not_started", clone.Status)
	}
	if clone.CalendarEventID != "" || clone.CalendarSource != "" {
		t.Errorf("clone calendar link = %q/%q, want cleared", clone.CalendarEventID, clone.CalendarSource)
	}
	if !clone.Recurring {
		t.Error("clone must stay recurring")
	}
}

func TestExecuteCarryForwardIsIdempotent(t *testing.T) {
	store := &mockGoalStore{goals: []domain.WeeklyGoal{
		{ID: "g1", WeekStartDate: "2025-06-02", RoleID: "r1", GoalText: "run 3x",
			Quadrant: 2, Status: domain.StatusNotStarted, Recurring: true},
	}}
	input := CarryForwardInput{TargetWeek: "2025-06-09"}

	if carried, err := ExecuteCarryForward(context.Background(), input, carryDeps(store)); err != nil || carried != 1 {
		t.Fatalf("first run = %d, %v", carried, err)
	}
	// Re-run, as after a process restart that lost the already-carried marker.
	carried, err := ExecuteCarryForward(context.Background(), input, carryDeps(store))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if carried != 0 {
		t.Errorf("second run carried = %d, want 0 (deduped on roleId+text)", carried)
	}
	if target, _ := store.ListByWeek(context.Background(), "2025-06-09"); len(target) != 1 {
		t.Errorf("target week goals = %d, want no duplicate", len(target))
	}
}

func TestExecuteCarryForwardCountdownReachesZero(t *testing.T) {
	store := &mockGoalStore{goals: []domain.WeeklyGoal{
		{ID: "g1", WeekStartDate: "2025-06-02", RoleID: "r1", GoalText: "taper off",
			Quadrant: 2, Status: domain.StatusNotStarted, Recurring: true,
			RecurringRemaining: intp(1)},
	}}

	carried, err := ExecuteCarryForward(context.Background(), CarryForwardInput{TargetWeek: "2025-06-09"}, carryDeps(store))
	if err != nil || carried != 1 {
		t.Fatalf("first carry = %d, %v", carried, err)
	}
	target, _ := store.ListByWeek(context.Background(), "2025-06-09")
	if got := target[0].RecurringRemaining; got == nil || *got != 0 {
		t.Fatalf("clone remaining = %v, want 0", got)
	}

	// The exhausted clone must not carry into the week after.
	carried, err = ExecuteCarryForward(context.Background(), CarryForwardInput{TargetWeek: "2025-06-16"}, carryDeps(store))
	if err != nil {
		t.Fatalf("second carry: %v", err)
	}
	if carried != 0 {
		t.Errorf("second carry = %d, want 0 once countdown hit zero", carried)
	}
}

func TestExecuteCarryForwardRespectsEndWeek(t *testing.T) {
	store := &mockGoalStore{goals: []domain.WeeklyGoal{
		{ID: "g1", WeekStartDate: "2025-06-02", RoleID: "r1", GoalText: "sprint ritual",
			Quadrant: 2, Status: domain.StatusNotStarted, Recurring: true,
			RecurringEnds: "2025-06-02"},
	}}

	carried, err := ExecuteCarryForward(context.Background(), CarryForwardInput{TargetWeek: "2025-06-09"}, carryDeps(store))
	if err != nil {
		t.Fatalf("ExecuteCarryForward: %v", err)
	}
	if carried != 0 {
		t.Errorf("carried = %d, want 0 past the end week", carried)
	}
}

func TestExecuteCarryForwardStopsOnAddError(t *testing.T) {
	boom := errors.New("append failed")
	store := &mockGoalStore{
		goals: []domain.WeeklyGoal{
			{ID: "g1", WeekStartDate: "2025-06-02", RoleID: "r1", GoalText: "a",
				Quadrant: 2, Status: domain.StatusNotStarted, Recurring: true},
			{ID: "g2", WeekStartDate: "2025-06-02", RoleID: "r2", GoalText: "b",
				Quadrant: 2, Status: domain.StatusNotStarted, Recurring: true},
		},
		addErr: boom,
	}

	carried, err := ExecuteCarryForward(context.Background(), CarryForwardInput{TargetWeek: "2025-06-09"}, carryDeps(store))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the add error", err)
	}
	if carried != 0 {
		t.Errorf("carried = %d, want 0", carried)
	}
	if store.adds != 1 {
		t.Errorf("adds = %d, want remaining clones abandoned after first failure", store.adds)
	}
}

func TestExecuteCarryForwardRejectsBadWeekKey(t *testing.T) {
	if _, err := ExecuteCarryForward(context.Background(), CarryForwardInput{TargetWeek: "not-a-week"}, carryDeps(&mockGoalStore{})); err == nil {
		t.Fatal("want error for invalid target week")
	}
}
