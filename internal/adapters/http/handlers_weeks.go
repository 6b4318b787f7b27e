package web

import (
	"net/http"
	"time"

	"compass/internal/application/orchestrators"
	refdomain "compass/internal/domain/reflection"
)

type reflectionJSON struct {
	ID            string    `json:"id"`
	WeekStartDate string    `json:"weekStartDate"`
	WentWell      string    `json:"wentWell"`
	DidntGoWell   string    `json:"didntGoWell"`
	Intentions    string    `json:"intentions"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	WeekRating    *int      `json:"weekRating,omitempty"`
}

func toReflectionJSON(r *refdomain.WeeklyReflection) *reflectionJSON {
	if r == nil {
		return nil
	}
	return &reflectionJSON{
		ID:            r.ID,
		WeekStartDate: r.WeekStartDate,
		WentWell:      r.WentWell,
		DidntGoWell:   r.DidntGoWell,
		Intentions:    r.Intentions,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		WeekRating:    r.WeekRating,
	}
}

// handleGetWeek handles GET /api/weeks/{week}. Entering a week runs
// recurring carry-forward (current week, once per process) and the
// prior-week closeout check as side effects.
func handleGetWeek(w http.ResponseWriter, r *http.Request) {
	weekKey, ok := weekParam(w, r)
	if !ok {
		return
	}
	res, err := deps.Session.EnterWeek(r.Context(), weekKey)
	if err != nil {
		respondError(w, err)
		return
	}

	goals := res.Plan.Goals()
	outGoals := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		outGoals = append(outGoals, toGoalJSON(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"weekStartDate":  weekKey,
		"goals":          outGoals,
		"reflection":     toReflectionJSON(res.Plan.Reflection()),
		"locked":         res.Plan.IsLocked(),
		"carriedGoals":   res.CarriedGoals,
		"promptCloseout": res.PromptCloseout,
	})
}

// handleGetLock handles GET /api/weeks/{week}/lock
func handleGetLock(w http.ResponseWriter, r *http.Request) {
	weekKey, ok := weekParam(w, r)
	if !ok {
		return
	}
	locked, err := orchestrators.IsLocked(r.Context(), deps.Stores.ReflectionStore, weekKey)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"locked": locked})
}

type closeOutJSON struct {
	MoveGoalIDs []string `json:"moveGoalIds"`
	WentWell    string   `json:"wentWell"`
	DidntGoWell string   `json:"didntGoWell"`
	Intentions  string   `json:"intentions"`
	WeekRating  *int     `json:"weekRating"`
}

// handleCloseOut handles POST /api/weeks/{week}/closeout
func handleCloseOut(w http.ResponseWriter, r *http.Request) {
	weekKey, ok := weekParam(w, r)
	if !ok {
		return
	}
	var input closeOutJSON
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	plan, ok := planFor(w, r, weekKey)
	if !ok {
		return
	}
	err := plan.CloseOut(r.Context(), input.MoveGoalIDs, orchestrators.ReflectionText{
		WentWell:    input.WentWell,
		DidntGoWell: input.DidntGoWell,
		Intentions:  input.Intentions,
		WeekRating:  input.WeekRating,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"locked":     true,
		"reflection": toReflectionJSON(plan.Reflection()),
	})
}

// handleSkipWeek handles POST /api/weeks/{week}/skip
func handleSkipWeek(w http.ResponseWriter, r *http.Request) {
	weekKey, ok := weekParam(w, r)
	if !ok {
		return
	}
	var input struct {
		MoveGoalIDs []string `json:"moveGoalIds"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	plan, ok := planFor(w, r, weekKey)
	if !ok {
		return
	}
	if err := plan.Skip(r.Context(), input.MoveGoalIDs); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"locked": false})
}

// handleUndoCloseOut handles POST /api/weeks/{week}/closeout/undo
func handleUndoCloseOut(w http.ResponseWriter, r *http.Request) {
	weekKey, ok := weekParam(w, r)
	if !ok {
		return
	}
	plan, ok := planFor(w, r, weekKey)
	if !ok {
		return
	}
	if err := plan.UndoCloseOut(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"locked": false})
}
