package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"compass/internal/adapters/auth"
	"compass/internal/adapters/rowstore"
	"compass/internal/application/orchestrators"
	"compass/internal/application/session"
	goaldomain "compass/internal/domain/goal"
	roledomain "compass/internal/domain/role"
	"compass/internal/domain/week"
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// respondError maps domain errors onto HTTP statuses; everything
// unrecognized is an internal error.
func respondError(w http.ResponseWriter, err error) {
	var authErr *auth.AuthError
	switch {
	case errors.Is(err, rowstore.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, session.ErrWeekLocked):
		http.Error(w, "week is locked; undo the closeout first", http.StatusConflict)
	case errors.Is(err, orchestrators.ErrNotLocked):
		http.Error(w, "week is not locked", http.StatusConflict)
	case errors.Is(err, week.ErrInvalidKey):
		http.Error(w, "invalid week key, want YYYY-MM-DD of a Monday", http.StatusBadRequest)
	case errors.Is(err, roledomain.ErrEmptyName),
		errors.Is(err, goaldomain.ErrEmptyText),
		errors.Is(err, goaldomain.ErrInvalidQuadrant),
		errors.Is(err, goaldomain.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &authErr):
		slog.Warn("auth_error", "op", authErr.Op, "error", authErr.Err.Error())
		http.Error(w, "not authenticated with Google", http.StatusUnauthorized)
	default:
		internalError(w, err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// weekParam validates the {week} path segment.
func weekParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.PathValue("week")
	if !week.IsKey(key) {
		respondError(w, week.ErrInvalidKey)
		return "", false
	}
	return key, true
}

// planFor enters the week and returns its plan. Carry-forward and the
// closeout prompt run as entry side effects inside the session manager.
func planFor(w http.ResponseWriter, r *http.Request, weekKey string) (*session.WeekPlan, bool) {
	res, err := deps.Session.EnterWeek(r.Context(), weekKey)
	if err != nil {
		respondError(w, err)
		return nil, false
	}
	return res.Plan, true
}
