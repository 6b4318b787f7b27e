package web

import "net/http"

func registerRoutes(mux *http.ServeMux) {
	// Roles
	mux.HandleFunc("GET /api/roles", handleListRoles)
	mux.HandleFunc("POST /api/roles", handleCreateRole)
	mux.HandleFunc("PUT /api/roles/{id}", handleUpdateRole)
	mux.HandleFunc("DELETE /api/roles/{id}", handleDeleteRole)

	// Week plans and goals
	mux.HandleFunc("GET /api/weeks/{week}", handleGetWeek)
	mux.HandleFunc("POST /api/weeks/{week}/goals", handleCreateGoal)
	mux.HandleFunc("PUT /api/weeks/{week}/goals/{id}", handleUpdateGoal)
	mux.HandleFunc("DELETE /api/weeks/{week}/goals/{id}", handleDeleteGoal)
	mux.HandleFunc("POST /api/weeks/{week}/goals/{id}/cycle", handleCycleGoalStatus)
	mux.HandleFunc("POST /api/weeks/{week}/goals/{id}/move", handleMoveGoal)
	mux.HandleFunc("POST /api/weeks/{week}/goals/{id}/copy", handleCopyGoal)

	// Closeout state machine
	mux.HandleFunc("GET /api/weeks/{week}/lock", handleGetLock)
	mux.HandleFunc("POST /api/weeks/{week}/closeout", handleCloseOut)
	mux.HandleFunc("POST /api/weeks/{week}/skip", handleSkipWeek)
	mux.HandleFunc("POST /api/weeks/{week}/closeout/undo", handleUndoCloseOut)

	// Projections
	mux.HandleFunc("GET /api/stats", handleGetStats)
	mux.HandleFunc("GET /api/weeks/{week}/summary", handleGetWeekSummary)

	// Settings
	mux.HandleFunc("GET /api/settings", handleGetSettings)
	mux.HandleFunc("PUT /api/settings/{key}", handlePutSetting)

	// Google consent flow
	mux.HandleFunc("GET /auth/url", handleAuthURL)
	mux.HandleFunc("GET /auth/callback", handleAuthCallback)
}
