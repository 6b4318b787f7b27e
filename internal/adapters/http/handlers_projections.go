package web

import (
	"net/http"

	"compass/internal/application/projections"
)

// handleGetStats handles GET /api/stats
func handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := projections.QueryGoalStats(r.Context(), projections.GoalStatsDeps{
		GoalStore:       deps.Stores.GoalStore,
		ReflectionStore: deps.Stores.ReflectionStore,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	weeks := make([]map[string]any, 0, len(stats.WeekHistory))
	for _, ws := range stats.WeekHistory {
		quadrants := make([]map[string]int, 0, len(ws.ByQuadrant))
		for _, qs := range ws.ByQuadrant {
			quadrants = append(quadrants, map[string]int{
				"quadrant": int(qs.Quadrant),
				"complete": qs.Complete,
				"total":    qs.Total,
				"pct":      qs.Pct,
			})
		}
		weeks = append(weeks, map[string]any{
			"weekStartDate": ws.WeekStartDate,
			"complete":      ws.Complete,
			"total":         ws.Total,
			"pct":           ws.Pct,
			"byQuadrant":    quadrants,
			"reflection":    toReflectionJSON(ws.Reflection),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"weekHistory":     weeks,
		"overallComplete": stats.OverallComplete,
		"overallTotal":    stats.OverallTotal,
		"overallPct":      stats.OverallPct,
	})
}

// handleGetWeekSummary handles GET /api/weeks/{week}/summary, returning a
// standalone HTML export of the week.
func handleGetWeekSummary(w http.ResponseWriter, r *http.Request) {
	weekKey, ok := weekParam(w, r)
	if !ok {
		return
	}
	page, err := projections.RenderWeekSummary(r.Context(), weekKey, projections.WeekSummaryDeps{
		RoleStore:       deps.Stores.RoleStore,
		GoalStore:       deps.Stores.GoalStore,
		ReflectionStore: deps.Stores.ReflectionStore,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}
