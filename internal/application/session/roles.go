// Package session owns the in-memory working state of one planning
// session: the role list and one plan per visited week. Each collection
// is owned by exactly one consumer and mutated only through the
// repository plus optimistic-mutation discipline.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"compass/internal/adapters/rowstore"
	rolestore "compass/internal/adapters/storage/role"
	"compass/internal/application/optimistic"
	domain "compass/internal/domain/role"
)

// RoleList is the session-owned collection of life roles.
type RoleList struct {
	store rolestore.Store
	coll  *optimistic.Collection[domain.Role]

	newID func() string
	now   func() time.Time
}

// NewRoleList creates an unloaded role list over the given store.
func NewRoleList(store rolestore.Store) *RoleList {
	return &RoleList{
		store: store,
		coll:  optimistic.New[domain.Role](),
		newID: func() string { return uuid.NewString() },
		now:   time.Now,
	}
}

// Load replaces local state with the store's contents.
func (l *RoleList) Load(ctx context.Context) error {
	roles, err := l.store.List(ctx)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	l.coll.Replace(roles)
	return nil
}

// Roles returns the current (possibly optimistic) role list.
func (l *RoleList) Roles() []domain.Role {
	return l.coll.Items()
}

// Active returns only the roles shown in pickers.
func (l *RoleList) Active() []domain.Role {
	var out []domain.Role
	for _, r := range l.coll.Items() {
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}

// Add creates a role at the end of the display order. The role is visible
// locally before the store round-trip completes and removed again if the
// write fails.
// PRE: name is non-empty
// POST: Returns the created role
func (l *RoleList) Add(ctx context.Context, name, description string) (domain.Role, error) {
	now := l.now()
	r := domain.Role{
		ID:          l.newID(),
		Name:        name,
		Description: description,
		SortOrder:   l.coll.Len() + 1,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.Validate(); err != nil {
		return domain.Role{}, err
	}
	err := l.coll.Mutate(ctx,
		func(items []domain.Role) []domain.Role { return append(items, r) },
		func(ctx context.Context) error { return l.store.Add(ctx, r) })
	if err != nil {
		return domain.Role{}, err
	}
	return r, nil
}

// Update rewrites a role in place. On a failed commit the list is reloaded
// from the store rather than rolled back, so an earlier divergence cannot
// compound.
func (l *RoleList) Update(ctx context.Context, r domain.Role) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.UpdatedAt = l.now()
	return l.coll.MutateReload(ctx,
		func(items []domain.Role) []domain.Role {
			for i := range items {
				if items[i].ID == r.ID {
					items[i] = r
				}
			}
			return items
		},
		func(ctx context.Context) error { return l.store.Update(ctx, r) },
		func(ctx context.Context) ([]domain.Role, error) { return l.store.List(ctx) })
}

// Delete removes a role. Goals referencing it keep their roleId and read
// as unassigned.
func (l *RoleList) Delete(ctx context.Context, id string) error {
	found := false
	for _, r := range l.coll.Items() {
		if r.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("role %q: %w", id, rowstore.ErrNotFound)
	}
	return l.coll.Mutate(ctx,
		func(items []domain.Role) []domain.Role {
			out := items[:0]
			for _, r := range items {
				if r.ID != id {
					out = append(out, r)
				}
			}
			return out
		},
		func(ctx context.Context) error { return l.store.Delete(ctx, id) })
}
