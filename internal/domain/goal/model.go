package goal

import (
	"errors"
	"time"

	"compass/internal/domain/week"
)

// Domain errors
var (
	ErrEmptyID         = errors.New("goal ID is required")
	ErrEmptyText       = errors.New("goal text is required")
	ErrInvalidWeek     = errors.New("weekStartDate must be the YYYY-MM-DD Monday of a week")
	ErrInvalidQuadrant = errors.New("quadrant must be 1-4")
	ErrInvalidStatus   = errors.New("unknown goal status")
)

// Quadrant is an Eisenhower/Covey urgency-importance quadrant (1-4).
type Quadrant int

// Quadrant values.
const (
	QuadrantUrgentImportant       Quadrant = 1
	QuadrantNotUrgentImportant    Quadrant = 2
	QuadrantUrgentNotImportant    Quadrant = 3
	QuadrantNotUrgentNotImportant Quadrant = 4
)

// Valid reports whether q is one of the four quadrants.
func (q Quadrant) Valid() bool {
	return q >= 1 && q <= 4
}

// Status is the completion state of a goal.
type Status string

// Status values, in cycle order.
const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// statusCycle is the order statuses advance through when cycled.
var statusCycle = []Status{StatusNotStarted, StatusInProgress, StatusComplete}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusComplete:
		return true
	}
	return false
}

// Next returns the status that follows s in the cycle
// (not_started -> in_progress -> complete -> not_started).
func (s Status) Next() Status {
	for i, st := range statusCycle {
		if st == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return StatusNotStarted
}

// CalendarSource identifies which external calendar a goal is linked to.
type CalendarSource string

// Calendar sources.
const (
	CalendarGoogle  CalendarSource = "google"
	CalendarOutlook CalendarSource = "outlook"
)

// WeeklyGoal is a goal planned for one week, attached to a role and a
// quadrant. WeekStartDate is the week key (Monday) and is the partition
// key for every goal query.
type WeeklyGoal struct {
	ID              string
	WeekStartDate   string // week key, YYYY-MM-DD Monday
	RoleID          string // soft reference; a dangling role reads as "unassigned"
	GoalText        string
	Quadrant        Quadrant
	Status          Status
	Notes           string
	CalendarEventID string
	CalendarSource  CalendarSource
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Recurring          bool
	RecurringEnds      string // last week key this may still be carried into; empty = no end
	RecurringRemaining *int   // carry countdown; 0 = do not carry again; nil = unlimited
}

// Validate checks if the WeeklyGoal has valid data.
// PRE: WeeklyGoal struct is populated
// POST: Returns nil if valid, error otherwise
func (g *WeeklyGoal) Validate() error {
	if g.ID == "" {
		return ErrEmptyID
	}
	if g.GoalText == "" {
		return ErrEmptyText
	}
	if !week.IsKey(g.WeekStartDate) {
		return ErrInvalidWeek
	}
	if !g.Quadrant.Valid() {
		return ErrInvalidQuadrant
	}
	if !g.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// IsComplete reports whether the goal is done.
func (g *WeeklyGoal) IsComplete() bool {
	return g.Status == StatusComplete
}

// CarriesInto reports whether a recurring goal is eligible to be carried
// into the given target week. Complete goals never carry; a goal stops
// carrying once past RecurringEnds or when RecurringRemaining hits zero.
func (g *WeeklyGoal) CarriesInto(targetWeek string) bool {
	if !g.Recurring || g.Status == StatusComplete {
		return false
	}
	if g.RecurringEnds != "" && targetWeek > g.RecurringEnds {
		return false
	}
	if g.RecurringRemaining != nil && *g.RecurringRemaining == 0 {
		return false
	}
	return true
}

// CarryClone builds the copy of g that lands in the target week during
// carry-forward: fresh identity and timestamps, status reset, calendar
// link cleared (a new week's event must be created fresh), and the carry
// countdown decremented when one is set.
// PRE: id is a freshly generated unique ID
// POST: Returns the clone; g is not modified
func (g *WeeklyGoal) CarryClone(id, targetWeek string, now time.Time) WeeklyGoal {
	clone := *g
	clone.ID = id
	clone.WeekStartDate = targetWeek
	clone.Status = StatusNotStarted
	clone.CalendarEventID = ""
	clone.CalendarSource = ""
	clone.CreatedAt = now
	clone.UpdatedAt = now
	if g.RecurringRemaining != nil && *g.RecurringRemaining > 0 {
		remaining := *g.RecurringRemaining - 1
		clone.RecurringRemaining = &remaining
	}
	return clone
}

// CopyTo builds a plain user-initiated copy of g into another week: fresh
// identity and timestamps, everything else kept as-is.
func (g *WeeklyGoal) CopyTo(id, targetWeek string, now time.Time) WeeklyGoal {
	copied := *g
	copied.ID = id
	copied.WeekStartDate = targetWeek
	copied.CreatedAt = now
	copied.UpdatedAt = now
	return copied
}
