package role

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrEmptyName = errors.New("role name is required")
	ErrEmptyID   = errors.New("role ID is required")
)

// Role is a Covey-style life role ("Parent", "Engineer", "Health") that
// weekly goals are planned against. Inactive roles are hidden from pickers
// but goals referencing them stay valid.
type Role struct {
	ID          string
	Name        string
	Description string
	SortOrder   int // display order in pickers and grouped views
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks if the Role has valid data.
// PRE: Role struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Role) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if r.Name == "" {
		return ErrEmptyName
	}
	return nil
}
