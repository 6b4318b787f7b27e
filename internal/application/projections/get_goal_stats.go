package projections

import (
	"context"
	"math"
	"sort"

	goaldomain "compass/internal/domain/goal"
	refdomain "compass/internal/domain/reflection"
)

// GoalStatsGoalStore defines the goal store interface for the stats query.
type GoalStatsGoalStore interface {
	List(ctx context.Context) ([]goaldomain.WeeklyGoal, error)
}

// GoalStatsReflectionStore defines the reflection store interface for the stats query.
type GoalStatsReflectionStore interface {
	List(ctx context.Context) ([]refdomain.WeeklyReflection, error)
}

// GoalStatsDeps holds dependencies for QueryGoalStats.
type GoalStatsDeps struct {
	GoalStore       GoalStatsGoalStore
	ReflectionStore GoalStatsReflectionStore
}

// QuadrantStats is completion progress within one quadrant of one week.
type QuadrantStats struct {
	Quadrant goaldomain.Quadrant
	Complete int
	Total    int
	Pct      int
}

// WeekStats is completion progress for one week, with its reflection when
// one was written.
type WeekStats struct {
	WeekStartDate string
	Complete      int
	Total         int
	Pct           int
	ByQuadrant    [4]QuadrantStats
	Reflection    *refdomain.WeeklyReflection
}

// GoalStats is the full completion history across all planned weeks.
type GoalStats struct {
	WeekHistory     []WeekStats
	OverallComplete int
	OverallTotal    int
	OverallPct      int
}

// QueryGoalStats aggregates every goal ever planned into per-week and
// overall completion stats. Weeks with no goals are omitted; reflection
// loading is best effort (history still renders if reflections fail).
// POST: WeekHistory is sorted ascending by week key
func QueryGoalStats(ctx context.Context, deps GoalStatsDeps) (GoalStats, error) {
	goals, err := deps.GoalStore.List(ctx)
	if err != nil {
		return GoalStats{}, err
	}

	reflectionByWeek := map[string]refdomain.WeeklyReflection{}
	if reflections, err := deps.ReflectionStore.List(ctx); err == nil {
		for _, r := range reflections {
			reflectionByWeek[r.WeekStartDate] = r
		}
	}

	byWeek := map[string][]goaldomain.WeeklyGoal{}
	for _, g := range goals {
		byWeek[g.WeekStartDate] = append(byWeek[g.WeekStartDate], g)
	}

	stats := GoalStats{}
	for weekKey, weekGoals := range byWeek {
		ws := WeekStats{WeekStartDate: weekKey, Total: len(weekGoals)}
		for q := goaldomain.Quadrant(1); q <= 4; q++ {
			ws.ByQuadrant[q-1].Quadrant = q
		}
		for _, g := range weekGoals {
			if g.IsComplete() {
				ws.Complete++
			}
			if !g.Quadrant.Valid() {
				continue
			}
			qs := &ws.ByQuadrant[g.Quadrant-1]
			qs.Total++
			if g.IsComplete() {
				qs.Complete++
			}
		}
		ws.Pct = pct(ws.Complete, ws.Total)
		for i := range ws.ByQuadrant {
			ws.ByQuadrant[i].Pct = pct(ws.ByQuadrant[i].Complete, ws.ByQuadrant[i].Total)
		}
		if r, ok := reflectionByWeek[weekKey]; ok {
			reflection := r
			ws.Reflection = &reflection
		}
		stats.WeekHistory = append(stats.WeekHistory, ws)
		stats.OverallComplete += ws.Complete
	}
	stats.OverallTotal = len(goals)
	stats.OverallPct = pct(stats.OverallComplete, stats.OverallTotal)

	// Week keys sort chronologically as strings.
	sort.Slice(stats.WeekHistory, func(i, j int) bool {
		return stats.WeekHistory[i].WeekStartDate < stats.WeekHistory[j].WeekStartDate
	})
	return stats, nil
}

func pct(complete, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(complete) / float64(total) * 100))
}
