// Package memory provides an in-process rowstore.Store. It backs the
// ephemeral storage mode and the repository tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"compass/internal/adapters/rowstore"
)

// Store keeps tables in memory. Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	tables map[string][]rowstore.Row
}

// NewStore creates a memory store pre-seeded with the given tables.
func NewStore(schema ...rowstore.Table) *Store {
	s := &Store{tables: make(map[string][]rowstore.Row)}
	for _, t := range schema {
		s.tables[t.Name] = nil
	}
	return s
}

// EnsureStore is a no-op: the store exists as soon as it is constructed.
func (s *Store) EnsureStore(_ context.Context) error { return nil }

// ReadTable returns a copy of all data rows.
// PRE: table exists
// POST: Returned rows are independent of internal state
func (s *Store) ReadTable(_ context.Context, table string) ([]rowstore.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.table(table)
	if err != nil {
		return nil, err
	}
	out := make([]rowstore.Row, len(rows))
	for i, r := range rows {
		out[i] = append(rowstore.Row(nil), r...)
	}
	return out, nil
}

// AppendRow inserts at the table end.
func (s *Store) AppendRow(_ context.Context, table string, row rowstore.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.table(table); err != nil {
		return err
	}
	s.tables[table] = append(s.tables[table], append(rowstore.Row(nil), row...))
	return nil
}

// FindRowPosition scans column A for an exact match.
// POST: Returns a 1-based position that accounts for the header row
func (s *Store) FindRowPosition(_ context.Context, table, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.table(table)
	if err != nil {
		return 0, err
	}
	for i, r := range rows {
		if rowstore.Cell(r, 0) == id {
			return i + 2, nil // +1 header row, +1 for 1-based positions
		}
	}
	return 0, fmt.Errorf("%q in %s: %w", id, table, rowstore.ErrNotFound)
}

// OverwriteRow replaces the row at the given position.
func (s *Store) OverwriteRow(_ context.Context, table string, position int, row rowstore.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.table(table)
	if err != nil {
		return err
	}
	idx := position - 2
	if idx < 0 || idx >= len(rows) {
		return &rowstore.StoreError{Op: fmt.Sprintf("overwrite %s row %d", table, position), Err: fmt.Errorf("position out of range")}
	}
	s.tables[table][idx] = append(rowstore.Row(nil), row...)
	return nil
}

// DeleteRow removes the row at the given position, shifting the rest up.
func (s *Store) DeleteRow(_ context.Context, table string, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.table(table)
	if err != nil {
		return err
	}
	idx := position - 2
	if idx < 0 || idx >= len(rows) {
		return &rowstore.StoreError{Op: fmt.Sprintf("delete %s row %d", table, position), Err: fmt.Errorf("position out of range")}
	}
	s.tables[table] = append(rows[:idx], rows[idx+1:]...)
	return nil
}

// EnsureTable adds an empty table if absent.
func (s *Store) EnsureTable(_ context.Context, table string, _ []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[table]; !ok {
		s.tables[table] = nil
	}
	return nil
}

func (s *Store) table(name string) ([]rowstore.Row, error) {
	rows, ok := s.tables[name]
	if !ok {
		return nil, &rowstore.StoreError{Op: "read " + name, Err: fmt.Errorf("unknown table")}
	}
	return rows, nil
}

// Ensure interface compliance at compile time.
var _ rowstore.Store = (*Store)(nil)
