package settings

import (
	"strconv"
	"time"
)

// Entry is one key/value row in the settings table. Values are
// string-encoded; callers decide the typed meaning.
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Well-known setting keys.
const (
	KeyWeekStartDay     = "weekStartDay"
	KeyReminderTime     = "reminderTime"
	KeyDefaultAttendees = "defaultAttendees"
)

// AppSettings are the decoded application preferences.
type AppSettings struct {
	WeekStartDay     int    // 0 = Sunday, 1 = Monday
	ReminderTime     string // HH:MM local time for weekly reminders
	DefaultAttendees string // comma-separated emails pre-filled on calendar events
}

// Defaults returns the settings used when no entries exist yet.
func Defaults() AppSettings {
	return AppSettings{
		WeekStartDay: 1, // Monday
		ReminderTime: "09:00",
	}
}

// FromEntries decodes typed settings from raw entries, falling back to
// defaults for missing or malformed values. Unknown keys are ignored.
func FromEntries(entries []Entry) AppSettings {
	s := Defaults()
	for _, e := range entries {
		switch e.Key {
		case KeyWeekStartDay:
			if n, err := strconv.Atoi(e.Value); err == nil && (n == 0 || n == 1) {
				s.WeekStartDay = n
			}
		case KeyReminderTime:
			if e.Value != "" {
				s.ReminderTime = e.Value
			}
		case KeyDefaultAttendees:
			s.DefaultAttendees = e.Value
		}
	}
	return s
}
