package role

import (
	"context"
	"strconv"
	"time"

	"compass/internal/adapters/rowstore"
	domain "compass/internal/domain/role"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// Table is the Roles wire layout. Column order is the contract.
var Table = rowstore.Table{
	Name:    "Roles",
	Headers: []string{"ID", "Name", "Description", "SortOrder", "Active", "CreatedAt", "UpdatedAt"},
}

// RowStore implements Store over the generic row store.
type RowStore struct {
	rows rowstore.Store
}

// NewRowStore creates a new Role repository.
func NewRowStore(rows rowstore.Store) *RowStore {
	return &RowStore{rows: rows}
}

// List returns all roles in table order.
// PRE: none
// POST: Returns every persisted role; never nil
func (s *RowStore) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := s.rows.ReadTable(ctx, Table.Name)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Role, 0, len(rows))
	for _, row := range rows {
		out = append(out, decodeRole(row))
	}
	return out, nil
}

// Add appends the role. The caller must have generated the id; duplicate
// prevention is not this layer's job.
func (s *RowStore) Add(ctx context.Context, r domain.Role) error {
	return s.rows.AppendRow(ctx, Table.Name, encodeRole(r))
}

// Update overwrites the role's row in place.
// POST: Returns rowstore.ErrNotFound if the id no longer exists
func (s *RowStore) Update(ctx context.Context, r domain.Role) error {
	pos, err := s.rows.FindRowPosition(ctx, Table.Name, r.ID)
	if err != nil {
		return err
	}
	return s.rows.OverwriteRow(ctx, Table.Name, pos, encodeRole(r))
}

// Delete removes the role's row. Goals referencing the id keep their
// dangling roleId and read as "unassigned".
// POST: Returns rowstore.ErrNotFound if the id no longer exists
func (s *RowStore) Delete(ctx context.Context, id string) error {
	pos, err := s.rows.FindRowPosition(ctx, Table.Name, id)
	if err != nil {
		return err
	}
	return s.rows.DeleteRow(ctx, Table.Name, pos)
}

func encodeRole(r domain.Role) rowstore.Row {
	return rowstore.Row{
		r.ID,
		r.Name,
		r.Description,
		strconv.Itoa(r.SortOrder),
		strconv.FormatBool(r.Active),
		encodeTime(r.CreatedAt),
		encodeTime(r.UpdatedAt),
	}
}

// decodeRole is total: blank or malformed cells fall back to zero values,
// and anything but the literal "false" counts as active (legacy rows
// predate the Active column and default to active).
func decodeRole(row rowstore.Row) domain.Role {
	sortOrder, _ := strconv.Atoi(rowstore.Cell(row, 3))
	return domain.Role{
		ID:          rowstore.Cell(row, 0),
		Name:        rowstore.Cell(row, 1),
		Description: rowstore.Cell(row, 2),
		SortOrder:   sortOrder,
		Active:      rowstore.Cell(row, 4) != "false",
		CreatedAt:   decodeTime(rowstore.Cell(row, 5)),
		UpdatedAt:   decodeTime(rowstore.Cell(row, 6)),
	}
}

func encodeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func decodeTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

// Ensure interface compliance at compile time.
var _ Store = (*RowStore)(nil)
