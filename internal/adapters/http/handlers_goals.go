package web

import (
	"net/http"
	"time"

	"compass/internal/application/session"
	goaldomain "compass/internal/domain/goal"
)

type goalJSON struct {
	ID                 string    `json:"id"`
	WeekStartDate      string    `json:"weekStartDate"`
	RoleID             string    `json:"roleId"`
	GoalText           string    `json:"goalText"`
	Quadrant           int       `json:"quadrant"`
	Status             string    `json:"status"`
	Notes              string    `json:"notes"`
	CalendarEventID    string    `json:"calendarEventId"`
	CalendarSource     string    `json:"calendarSource"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	Recurring          bool      `json:"recurring"`
	RecurringEnds      string    `json:"recurringEnds,omitempty"`
	RecurringRemaining *int      `json:"recurringRemaining,omitempty"`
}

func toGoalJSON(g goaldomain.WeeklyGoal) goalJSON {
	return goalJSON{
		ID:                 g.ID,
		WeekStartDate:      g.WeekStartDate,
		RoleID:             g.RoleID,
		GoalText:           g.GoalText,
		Quadrant:           int(g.Quadrant),
		Status:             string(g.Status),
		Notes:              g.Notes,
		CalendarEventID:    g.CalendarEventID,
		CalendarSource:     string(g.CalendarSource),
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
		Recurring:          g.Recurring,
		RecurringEnds:      g.RecurringEnds,
		RecurringRemaining: g.RecurringRemaining,
	}
}

type goalInputJSON struct {
	RoleID             string `json:"roleId"`
	GoalText           string `json:"goalText"`
	Quadrant           int    `json:"quadrant"`
	Notes              string `json:"notes"`
	Recurring          bool   `json:"recurring"`
	RecurringEnds      string `json:"recurringEnds"`
	RecurringRemaining *int   `json:"recurringRemaining"`
}

func (in goalInputJSON) toInput() session.GoalInput {
	return session.GoalInput{
		RoleID:             in.RoleID,
		GoalText:           in.GoalText,
		Quadrant:           goaldomain.Quadrant(in.Quadrant),
		Notes:              in.Notes,
		Recurring:          in.Recurring,
		RecurringEnds:      in.RecurringEnds,
		RecurringRemaining: in.RecurringRemaining,
	}
}

// handleCreateGoal handles POST /api/weeks/{week}/goals
func handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	weekKey, ok := weekParam(w, r)
	if !ok {
		return
	}
	var input goalInputJSON
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	plan, ok := planFor(w, r, weekKey)
	if !ok {
		return
	}
	created, err := plan.AddGoal(r.Context(), input.toInput())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalJSON(created))
}

// handleUpdateGoal handles PUT /api/weeks/{week}/goals/{id}
func handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	weekKey, ok := weekParam(w, r)
	if !ok {
		return
	}
	var input goalInputJSON
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	plan, ok := planFor(w, r, weekKey)
	if !ok {
		return
	}
	updated, err := plan.UpdateGoal(r.Context(), r.PathValue("id"), input.toInput())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalJSON(updated))
}

// handleDeleteGoal handles DELETE /api/weeks/{week}/goals/{id}
func handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	weekKey, ok := weekParam(w, r)
	if !ok {
		return
	}
	plan, ok := planFor(w, r, weekKey)
	if !ok {
		return
	}
	if err := plan.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCycleGoalStatus handles POST /api/weeks/{week}/goals/{id}/cycle
func handleCycleGoalStatus(w http.ResponseWriter, r *http.Request) {
	weekKey, ok := weekParam(w, r)
	if !ok {
		return
	}
	plan, ok := planFor(w, r, weekKey)
	if !ok {
		return
	}
	cycled, err := plan.CycleStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalJSON(cycled))
}

// handleMoveGoal handles POST /api/weeks/{week}/goals/{id}/move
func handleMoveGoal(w http.ResponseWriter, r *http.Request) {
	weekKey, ok := weekParam(w, r)
	if !ok {
		return
	}
	var input struct {
		TargetWeek string `json:"targetWeek"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	plan, ok := planFor(w, r, weekKey)
	if !ok {
		return
	}
	if err := plan.MoveToWeek(r.Context(), r.PathValue("id"), input.TargetWeek); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCopyGoal handles POST /api/weeks/{week}/goals/{id}/copy
func handleCopyGoal(w http.ResponseWriter, r *http.Request) {
	weekKey, ok := weekParam(w, r)
	if !ok {
		return
	}
	var input struct {
		TargetWeek string `json:"targetWeek"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	plan, ok := planFor(w, r, weekKey)
	if !ok {
		return
	}
	copied, err := plan.CopyToWeek(r.Context(), r.PathValue("id"), input.TargetWeek)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalJSON(copied))
}
