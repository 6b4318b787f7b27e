package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"compass/internal/adapters/rowstore"
	"compass/internal/adapters/rowstore/memory"
	rolestore "compass/internal/adapters/storage/role"
	domain "compass/internal/domain/role"
)

// failingRoleStore wraps a Store and fails selected operations.
type failingRoleStore struct {
	rolestore.Store
	addErr    error
	updateErr error
}

func (f *failingRoleStore) Add(ctx context.Context, r domain.Role) error {
	if f.addErr != nil {
		return f.addErr
	}
	return f.Store.Add(ctx, r)
}

func (f *failingRoleStore) Update(ctx context.Context, r domain.Role) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.Store.Update(ctx, r)
}

func newTestRoleList(store rolestore.Store) *RoleList {
	l := NewRoleList(store)
	n := 0
	l.newID = func() string {
		n++
		return "role-" + string(rune('0'+n))
	}
	l.now = func() time.Time { return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) }
	return l
}

func TestRoleListAddAssignsNextSortOrder(t *testing.T) {
	l := newTestRoleList(rolestore.NewRowStore(memory.NewStore(rolestore.Table)))
	ctx := context.Background()

	first, err := l.Add(ctx, "Health", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	second, err := l.Add(ctx, "Parent", "school runs")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if first.SortOrder != 1 || second.SortOrder != 2 {
		t.Errorf("sort orders = %d, %d, want 1, 2", first.SortOrder, second.SortOrder)
	}
	if !second.Active {
		t.Error("new roles start active")
	}
	if len(l.Roles()) != 2 {
		t.Errorf("roles = %d, want 2", len(l.Roles()))
	}
}

func TestRoleListAddRollsBackOnStoreFailure(t *testing.T) {
	boom := errors.New("store down")
	store := &failingRoleStore{Store: rolestore.NewRowStore(memory.NewStore(rolestore.Table)), addErr: boom}
	l := newTestRoleList(store)

	if _, err := l.Add(context.Background(), "Health", ""); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want store error", err)
	}
	if len(l.Roles()) != 0 {
		t.Errorf("roles = %v, want optimistic add rolled back", l.Roles())
	}
}

func TestRoleListUpdateReloadsOnFailure(t *testing.T) {
	inner := rolestore.NewRowStore(memory.NewStore(rolestore.Table))
	store := &failingRoleStore{Store: inner}
	l := newTestRoleList(store)
	ctx := context.Background()

	r, err := l.Add(ctx, "Health", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	store.updateErr = errors.New("store down")
	r.Name = "Fitness"
	if err := l.Update(ctx, r); err == nil {
		t.Fatal("want update error surfaced")
	}
	// Local state was reloaded from the store, which still has the old name.
	if got := l.Roles(); len(got) != 1 || got[0].Name != "Health" {
		t.Errorf("roles after reload = %+v, want authoritative state", got)
	}
}

func TestRoleListDeleteUnknownID(t *testing.T) {
	l := newTestRoleList(rolestore.NewRowStore(memory.NewStore(rolestore.Table)))
	if err := l.Delete(context.Background(), "ghost"); !errors.Is(err, rowstore.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRoleListActiveFiltersInactive(t *testing.T) {
	l := newTestRoleList(rolestore.NewRowStore(memory.NewStore(rolestore.Table)))
	ctx := context.Background()

	r, _ := l.Add(ctx, "Health", "")
	l.Add(ctx, "Parent", "")
	r.Active = false
	if err := l.Update(ctx, r); err != nil {
		t.Fatalf("Update: %v", err)
	}

	active := l.Active()
	if len(active) != 1 || active[0].Name != "Parent" {
		t.Errorf("active = %+v, want only Parent", active)
	}
	if len(l.Roles()) != 2 {
		t.Error("inactive roles stay in the full list")
	}
}
