// Package week provides helpers for the Monday-keyed week buckets that
// partition all planning data. A week key is the ISO date (YYYY-MM-DD) of
// the Monday starting that week.
package week

import (
	"errors"
	"time"
)

// KeyLayout is the storage format for week keys.
const KeyLayout = "2006-01-02"

// ErrInvalidKey indicates a string that is not the YYYY-MM-DD date of a
// Monday.
var ErrInvalidKey = errors.New("invalid week key")

// Start returns the Monday at the start of the week containing t,
// truncated to midnight in t's location.
func Start(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday belongs to the week that started the previous Monday
	}
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// End returns the Sunday at the end of the week containing t.
func End(t time.Time) time.Time {
	return Start(t).AddDate(0, 0, 6)
}

// Shift moves forward or backward by a number of weeks.
func Shift(t time.Time, weeks int) time.Time {
	return t.AddDate(0, 0, 7*weeks)
}

// Key formats the week containing t as a storage key.
func Key(t time.Time) string {
	return Start(t).Format(KeyLayout)
}

// ParseKey parses a week key back into a date. Keys name whole week
// buckets, so a date that is not a Monday is rejected rather than
// silently snapped to one.
// PRE: key is the YYYY-MM-DD date of a Monday
// POST: Returns the parsed date or ErrInvalidKey
func ParseKey(key string) (time.Time, error) {
	t, err := time.Parse(KeyLayout, key)
	if err != nil {
		return time.Time{}, ErrInvalidKey
	}
	if t.Weekday() != time.Monday {
		return time.Time{}, ErrInvalidKey
	}
	return t, nil
}

// IsKey reports whether s parses as a week key.
func IsKey(s string) bool {
	_, err := ParseKey(s)
	return err == nil
}

// NextKey returns the key of the week after the given one.
func NextKey(key string) (string, error) {
	t, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	return Shift(t, 1).Format(KeyLayout), nil
}

// PrevKey returns the key of the week before the given one.
func PrevKey(key string) (string, error) {
	t, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	return Shift(t, -1).Format(KeyLayout), nil
}

// RangeLabel formats a week for display, e.g. "Feb 10 - Feb 16, 2026".
func RangeLabel(weekStart time.Time) string {
	start := Start(weekStart)
	end := End(weekStart)
	return start.Format("Jan 2") + " - " + end.Format("Jan 2, 2006")
}
