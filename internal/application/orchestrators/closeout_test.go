package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"compass/internal/adapters/rowstore"
	goaldomain "compass/internal/domain/goal"
	refdomain "compass/internal/domain/reflection"
)

// mockReflectionStore is an in-memory reflection store keyed by week.
type mockReflectionStore struct {
	byWeek    map[string]refdomain.WeeklyReflection
	getErr    error
	addErr    error
	deleteErr error
}

func newMockReflectionStore() *mockReflectionStore {
	return &mockReflectionStore{byWeek: map[string]refdomain.WeeklyReflection{}}
}

func (m *mockReflectionStore) GetByWeek(_ context.Context, weekStartDate string) (refdomain.WeeklyReflection, error) {
	if m.getErr != nil {
		return refdomain.WeeklyReflection{}, m.getErr
	}
	r, ok := m.byWeek[weekStartDate]
	if !ok {
		return refdomain.WeeklyReflection{}, fmt.Errorf("week %s: %w", weekStartDate, rowstore.ErrNotFound)
	}
	return r, nil
}

func (m *mockReflectionStore) Add(_ context.Context, r refdomain.WeeklyReflection) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.byWeek[r.WeekStartDate] = r
	return nil
}

func (m *mockReflectionStore) Update(_ context.Context, r refdomain.WeeklyReflection) error {
	m.byWeek[r.WeekStartDate] = r
	return nil
}

func (m *mockReflectionStore) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for wk, r := range m.byWeek {
		if r.ID == id {
			delete(m.byWeek, wk)
			return nil
		}
	}
	return fmt.Errorf("reflection %q: %w", id, rowstore.ErrNotFound)
}

// closeoutGoals adapts mockGoalStore with an Update method.
type closeoutGoals struct {
	*mockGoalStore
	updateErr error
}

func (c *closeoutGoals) Update(_ context.Context, g goaldomain.WeeklyGoal) error {
	if c.updateErr != nil {
		return c.updateErr
	}
	for i := range c.goals {
		if c.goals[i].ID == g.ID {
			c.goals[i] = g
			return nil
		}
	}
	return fmt.Errorf("goal %q: %w", g.ID, rowstore.ErrNotFound)
}

func closeoutDeps(goals *closeoutGoals, refs *mockReflectionStore) CloseoutDeps {
	return CloseoutDeps{
		GoalStore:       goals,
		ReflectionStore: refs,
		NewID:           func() string { return "ref-1" },
		Now:             func() time.Time { return time.Date(2025, 6, 8, 21, 0, 0, 0, time.UTC) },
	}
}

func TestIsLockedDerivedFromReflectionExistence(t *testing.T) {
	refs := newMockReflectionStore()
	ctx := context.Background()

	locked, err := IsLocked(ctx, refs, "2025-06-02")
	if err != nil || locked {
		t.Fatalf("open week: locked = %v, %v", locked, err)
	}

	refs.Add(ctx, refdomain.WeeklyReflection{ID: "ref-1", WeekStartDate: "2025-06-02"})
	if locked, _ = IsLocked(ctx, refs, "2025-06-02"); !locked {
		t.Error("week with reflection must be locked")
	}

	// Deleting the reflection reopens the week.
	refs.Delete(ctx, "ref-1")
	if locked, _ = IsLocked(ctx, refs, "2025-06-02"); locked {
		t.Error("week must unlock once the reflection is gone")
	}
}

func TestExecuteCloseOut(t *testing.T) {
	goals := &closeoutGoals{mockGoalStore: &mockGoalStore{goals: []goaldomain.WeeklyGoal{
		{ID: "g1", WeekStartDate: "2025-06-02", RoleID: "r1", GoalText: "Run 3x",
			Quadrant: 2, Status: goaldomain.StatusInProgress},
		{ID: "g2", WeekStartDate: "2025-06-02", RoleID: "r1", GoalText: "done thing",
			Quadrant: 1, Status: goaldomain.StatusComplete},
	}}}
	refs := newMockReflectionStore()
	ctx := context.Background()

	err := ExecuteCloseOut(ctx, CloseOutInput{
		Week:        "2025-06-02",
		MoveGoalIDs: []string{"g1"},
		Reflection:  ReflectionText{WentWell: "", DidntGoWell: "", Intentions: ""},
	}, closeoutDeps(goals, refs))
	if err != nil {
		t.Fatalf("ExecuteCloseOut: %v", err)
	}

	if goals.goals[0].WeekStartDate != "2025-06-09" {
		t.Errorf("g1 week = %s, want moved to 2025-06-09", goals.goals[0].WeekStartDate)
	}
	if goals.goals[0].ID != "g1" {
		t.Error("move must keep the same goal id")
	}
	if goals.goals[1].WeekStartDate != "2025-06-02" {
		t.Error("unselected goal must stay put")
	}
	if locked, _ := IsLocked(ctx, refs, "2025-06-02"); !locked {
		t.Error("closed-out week must be locked")
	}
}

func TestExecuteCloseOutUpdatesExistingReflection(t *testing.T) {
	goals := &closeoutGoals{mockGoalStore: &mockGoalStore{}}
	refs := newMockReflectionStore()
	ctx := context.Background()
	created := time.Date(2025, 6, 8, 9, 0, 0, 0, time.UTC)
	refs.Add(ctx, refdomain.WeeklyReflection{
		ID: "ref-0", WeekStartDate: "2025-06-02", WentWell: "old", CreatedAt: created,
	})

	err := ExecuteCloseOut(ctx, CloseOutInput{
		Week:       "2025-06-02",
		Reflection: ReflectionText{WentWell: "new", WeekRating: intp(4)},
	}, closeoutDeps(goals, refs))
	if err != nil {
		t.Fatalf("ExecuteCloseOut: %v", err)
	}

	got := refs.byWeek["2025-06-02"]
	if got.ID != "ref-0" {
		t.Errorf("id = %q, want existing reflection updated in place", got.ID)
	}
	if got.WentWell != "new" || got.WeekRating == nil || *got.WeekRating != 4 {
		t.Errorf("reflection = %+v, want new text applied", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Error("update must preserve CreatedAt")
	}
}

func TestExecuteCloseOutReflectionFailureLeavesGoalsMoved(t *testing.T) {
	goals := &closeoutGoals{mockGoalStore: &mockGoalStore{goals: []goaldomain.WeeklyGoal{
		{ID: "g1", WeekStartDate: "2025-06-02", GoalText: "x", Quadrant: 2,
			Status: goaldomain.StatusNotStarted},
	}}}
	refs := newMockReflectionStore()
	boom := errors.New("append failed")
	refs.addErr = boom

	err := ExecuteCloseOut(context.Background(), CloseOutInput{
		Week:        "2025-06-02",
		MoveGoalIDs: []string{"g1"},
	}, closeoutDeps(goals, refs))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want reflection write error", err)
	}
	// No cross-step rollback: the move stands even though the week stayed open.
	if goals.goals[0].WeekStartDate != "2025-06-09" {
		t.Error("moved goal must not be moved back on reflection failure")
	}
	if locked, _ := IsLocked(context.Background(), refs, "2025-06-02"); locked {
		t.Error("week must remain open when the reflection write failed")
	}
}

func TestExecuteCloseOutUnknownGoalID(t *testing.T) {
	goals := &closeoutGoals{mockGoalStore: &mockGoalStore{}}
	refs := newMockReflectionStore()

	err := ExecuteCloseOut(context.Background(), CloseOutInput{
		Week:        "2025-06-02",
		MoveGoalIDs: []string{"ghost"},
	}, closeoutDeps(goals, refs))
	if !errors.Is(err, rowstore.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for unknown goal id", err)
	}
	if len(refs.byWeek) != 0 {
		t.Error("no reflection may be written when the move step failed")
	}
}

func TestExecuteSkipMovesWithoutLocking(t *testing.T) {
	goals := &closeoutGoals{mockGoalStore: &mockGoalStore{goals: []goaldomain.WeeklyGoal{
		{ID: "g1", WeekStartDate: "2025-06-02", GoalText: "x", Quadrant: 2,
			Status: goaldomain.StatusNotStarted},
	}}}
	refs := newMockReflectionStore()
	ctx := context.Background()

	if err := ExecuteSkip(ctx, "2025-06-02", []string{"g1"}, closeoutDeps(goals, refs)); err != nil {
		t.Fatalf("ExecuteSkip: %v", err)
	}
	if goals.goals[0].WeekStartDate != "2025-06-09" {
		t.Error("skip must still move selected goals")
	}
	if locked, _ := IsLocked(ctx, refs, "2025-06-02"); locked {
		t.Error("skip must not lock the week")
	}
}

func TestExecuteUndo(t *testing.T) {
	goals := &closeoutGoals{mockGoalStore: &mockGoalStore{}}
	refs := newMockReflectionStore()
	ctx := context.Background()
	refs.Add(ctx, refdomain.WeeklyReflection{ID: "ref-1", WeekStartDate: "2025-06-02"})

	if err := ExecuteUndo(ctx, "2025-06-02", closeoutDeps(goals, refs)); err != nil {
		t.Fatalf("ExecuteUndo: %v", err)
	}
	if locked, _ := IsLocked(ctx, refs, "2025-06-02"); locked {
		t.Error("undo must unlock the week")
	}

	if err := ExecuteUndo(ctx, "2025-06-02", closeoutDeps(goals, refs)); !errors.Is(err, ErrNotLocked) {
		t.Errorf("undo on open week = %v, want ErrNotLocked", err)
	}
}

func TestShouldPromptCloseout(t *testing.T) {
	refs := newMockReflectionStore()
	ctx := context.Background()

	if !ShouldPromptCloseout(ctx, refs, "2025-06-09") {
		t.Error("prior week open: want prompt")
	}

	refs.Add(ctx, refdomain.WeeklyReflection{ID: "ref-1", WeekStartDate: "2025-06-02"})
	if ShouldPromptCloseout(ctx, refs, "2025-06-09") {
		t.Error("prior week locked: want no prompt")
	}

	// A failing check is swallowed and never prompts.
	refs.getErr = errors.New("store unreachable")
	if ShouldPromptCloseout(ctx, refs, "2025-06-09") {
		t.Error("failed check must not prompt")
	}

	if ShouldPromptCloseout(ctx, refs, "garbage") {
		t.Error("invalid week key must not prompt")
	}
}
