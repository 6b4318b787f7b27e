package settings

import (
	"context"
	"errors"
	"time"

	"compass/internal/adapters/rowstore"
	domain "compass/internal/domain/settings"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// Table is the Settings wire layout: column A is the key.
var Table = rowstore.Table{
	Name:    "Settings",
	Headers: []string{"Key", "Value", "UpdatedAt"},
}

// RowStore implements Store over the generic row store.
type RowStore struct {
	rows rowstore.Store
	now  func() time.Time // injectable for testing
}

// NewRowStore creates a new settings repository.
func NewRowStore(rows rowstore.Store) *RowStore {
	return &RowStore{rows: rows, now: time.Now}
}

// List returns all settings entries.
func (s *RowStore) List(ctx context.Context) ([]domain.Entry, error) {
	rows, err := s.rows.ReadTable(ctx, Table.Name)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Entry, 0, len(rows))
	for _, row := range rows {
		var updated time.Time
		if t, err := time.Parse(timeLayout, rowstore.Cell(row, 2)); err == nil {
			updated = t
		}
		out = append(out, domain.Entry{
			Key:       rowstore.Cell(row, 0),
			Value:     rowstore.Cell(row, 1),
			UpdatedAt: updated,
		})
	}
	return out, nil
}

// Set upserts a key. The store has no native upsert, so this is
// update-by-key falling back to append on ErrNotFound. Two primitives,
// not an atomic operation.
func (s *RowStore) Set(ctx context.Context, key, value string) error {
	row := rowstore.Row{key, value, s.now().Format(timeLayout)}
	pos, err := s.rows.FindRowPosition(ctx, Table.Name, key)
	if errors.Is(err, rowstore.ErrNotFound) {
		return s.rows.AppendRow(ctx, Table.Name, row)
	}
	if err != nil {
		return err
	}
	return s.rows.OverwriteRow(ctx, Table.Name, pos, row)
}

// Ensure interface compliance at compile time.
var _ Store = (*RowStore)(nil)
