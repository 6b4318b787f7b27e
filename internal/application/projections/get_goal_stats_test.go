package projections

import (
	"context"
	"errors"
	"testing"

	goaldomain "compass/internal/domain/goal"
	refdomain "compass/internal/domain/reflection"
)

type stubGoalStore struct {
	goals []goaldomain.WeeklyGoal
	err   error
}

func (s *stubGoalStore) List(_ context.Context) ([]goaldomain.WeeklyGoal, error) {
	return s.goals, s.err
}

type stubReflectionStore struct {
	reflections []refdomain.WeeklyReflection
	err         error
}

func (s *stubReflectionStore) List(_ context.Context) ([]refdomain.WeeklyReflection, error) {
	return s.reflections, s.err
}

func TestQueryGoalStats(t *testing.T) {
	goals := []goaldomain.WeeklyGoal{
		{ID: "g1", WeekStartDate: "2025-06-09", Quadrant: 2, Status: goaldomain.StatusComplete},
		{ID: "g2", WeekStartDate: "2025-06-09", Quadrant: 2, Status: goaldomain.StatusNotStarted},
		{ID: "g3", WeekStartDate: "2025-06-09", Quadrant: 1, Status: goaldomain.StatusComplete},
		{ID: "g4", WeekStartDate: "2025-06-02", Quadrant: 4, Status: goaldomain.StatusInProgress},
	}
	reflections := []refdomain.WeeklyReflection{
		{ID: "r1", WeekStartDate: "2025-06-02", WentWell: "rested"},
	}

	stats, err := QueryGoalStats(context.Background(), GoalStatsDeps{
		GoalStore:       &stubGoalStore{goals: goals},
		ReflectionStore: &stubReflectionStore{reflections: reflections},
	})
	if err != nil {
		t.Fatalf("QueryGoalStats: %v", err)
	}

	if len(stats.WeekHistory) != 2 {
		t.Fatalf("weeks = %d, want 2", len(stats.WeekHistory))
	}
	if stats.WeekHistory[0].WeekStartDate != "2025-06-02" || stats.WeekHistory[1].WeekStartDate != "2025-06-09" {
		t.Errorf("history not sorted by week key: %+v", stats.WeekHistory)
	}

	older := stats.WeekHistory[0]
	if older.Total != 1 || older.Complete != 0 || older.Pct != 0 {
		t.Errorf("older week = %+v", older)
	}
	if older.Reflection == nil || older.Reflection.WentWell != "rested" {
		t.Errorf("older week reflection = %+v, want attached", older.Reflection)
	}

	newer := stats.WeekHistory[1]
	if newer.Total != 3 || newer.Complete != 2 || newer.Pct != 67 {
		t.Errorf("newer week = %+v, want 2/3 complete at 67%%", newer)
	}
	if newer.Reflection != nil {
		t.Error("newer week has no reflection")
	}
	q2 := newer.ByQuadrant[1]
	if q2.Quadrant != 2 || q2.Total != 2 || q2.Complete != 1 || q2.Pct != 50 {
		t.Errorf("quadrant 2 = %+v", q2)
	}
	q3 := newer.ByQuadrant[2]
	if q3.Total != 0 || q3.Pct != 0 {
		t.Errorf("empty quadrant = %+v, want zeroed", q3)
	}

	if stats.OverallTotal != 4 || stats.OverallComplete != 2 || stats.OverallPct != 50 {
		t.Errorf("overall = %d/%d at %d%%", stats.OverallComplete, stats.OverallTotal, stats.OverallPct)
	}
}

func TestQueryGoalStatsToleratesReflectionFailure(t *testing.T) {
	stats, err := QueryGoalStats(context.Background(), GoalStatsDeps{
		GoalStore: &stubGoalStore{goals: []goaldomain.WeeklyGoal{
			{ID: "g1", WeekStartDate: "2025-06-09", Quadrant: 2, Status: goaldomain.StatusComplete},
		}},
		ReflectionStore: &stubReflectionStore{err: errors.New("table missing")},
	})
	if err != nil {
		t.Fatalf("QueryGoalStats: %v", err)
	}
	if len(stats.WeekHistory) != 1 || stats.WeekHistory[0].Reflection != nil {
		t.Errorf("history = %+v, want goals without reflections", stats.WeekHistory)
	}
}

func TestQueryGoalStatsPropagatesGoalFailure(t *testing.T) {
	boom := errors.New("store down")
	_, err := QueryGoalStats(context.Background(), GoalStatsDeps{
		GoalStore:       &stubGoalStore{err: boom},
		ReflectionStore: &stubReflectionStore{},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want goal store error", err)
	}
}

func TestQueryGoalStatsEmpty(t *testing.T) {
	stats, err := QueryGoalStats(context.Background(), GoalStatsDeps{
		GoalStore:       &stubGoalStore{},
		ReflectionStore: &stubReflectionStore{},
	})
	if err != nil {
		t.Fatalf("QueryGoalStats: %v", err)
	}
	if len(stats.WeekHistory) != 0 || stats.OverallPct != 0 {
		t.Errorf("stats = %+v, want empty", stats)
	}
}
