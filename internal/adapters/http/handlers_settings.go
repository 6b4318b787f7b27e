package web

import (
	"net/http"

	settingsdomain "compass/internal/domain/settings"
)

// handleGetSettings handles GET /api/settings. Raw entries decode through
// the domain defaults, so a fresh store still answers fully populated.
func handleGetSettings(w http.ResponseWriter, r *http.Request) {
	entries, err := deps.Stores.SettingsStore.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	s := settingsdomain.FromEntries(entries)
	writeJSON(w, http.StatusOK, map[string]any{
		"weekStartDay":     s.WeekStartDay,
		"reminderTime":     s.ReminderTime,
		"defaultAttendees": s.DefaultAttendees,
	})
}

// handlePutSetting handles PUT /api/settings/{key}
func handlePutSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	switch key {
	case settingsdomain.KeyWeekStartDay, settingsdomain.KeyReminderTime, settingsdomain.KeyDefaultAttendees:
	default:
		http.Error(w, "unknown setting key", http.StatusBadRequest)
		return
	}
	var input struct {
		Value string `json:"value"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := deps.Stores.SettingsStore.Set(r.Context(), key, input.Value); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
