package reflection

import (
	"errors"
	"time"

	"compass/internal/domain/week"
)

// Domain errors
var (
	ErrEmptyID     = errors.New("reflection ID is required")
	ErrEmptyWeek   = errors.New("reflection weekStartDate is required")
	ErrInvalidWeek = errors.New("reflection weekStartDate must be the YYYY-MM-DD Monday of a week")
)

// WeeklyReflection is the record written when a week is closed out. At
// most one reflection exists per week key; its presence is what marks the
// week as locked.
type WeeklyReflection struct {
	ID            string
	WeekStartDate string // week key, unique per week
	WentWell      string
	DidntGoWell   string
	Intentions    string // intentions for the following week
	CreatedAt     time.Time
	UpdatedAt     time.Time
	WeekRating    *int // optional 1-5 self rating
}

// Validate checks if the WeeklyReflection has valid data.
// PRE: WeeklyReflection struct is populated
// POST: Returns nil if valid, error otherwise
func (r *WeeklyReflection) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if r.WeekStartDate == "" {
		return ErrEmptyWeek
	}
	if !week.IsKey(r.WeekStartDate) {
		return ErrInvalidWeek
	}
	return nil
}
