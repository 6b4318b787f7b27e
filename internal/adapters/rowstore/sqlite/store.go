// Package sqlite implements the row store on a local SQLite file. It
// exists for development and offline use; it deliberately mirrors the
// spreadsheet's shape (ordered string rows under named tables, no
// uniqueness constraints) rather than exposing SQL semantics, so code
// exercised against it behaves identically against the Sheets backend.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"compass/internal/adapters/rowstore"
)

// Store keeps each logical table as ordered rows in a single SQLite table.
type Store struct {
	db     *sql.DB
	schema []rowstore.Table

	mu      sync.Mutex
	ensured bool
}

// Open opens (creating if needed) the SQLite file at path.
// PRE: path is writable
// POST: Returns a Store ready for EnsureStore
func Open(path string, schema ...rowstore.Table) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Store{db: db, schema: schema}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// EnsureStore creates the backing tables once per process.
func (s *Store) EnsureStore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}
	ddl := `
	CREATE TABLE IF NOT EXISTS sheet (
		name TEXT PRIMARY KEY,
		headers TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sheet_row (
		sheet TEXT NOT NULL,
		seq INTEGER NOT NULL,
		cells TEXT NOT NULL,
		PRIMARY KEY (sheet, seq)
	);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return &rowstore.StoreError{Op: "ensure store", Err: err}
	}
	for _, t := range s.schema {
		if err := s.ensureTableLocked(ctx, t.Name, t.Headers); err != nil {
			return err
		}
	}
	s.ensured = true
	return nil
}

func (s *Store) ensureTableLocked(ctx context.Context, table string, headers []string) error {
	encoded, err := json.Marshal(headers)
	if err != nil {
		return &rowstore.StoreError{Op: "ensure table " + table, Err: err}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sheet (name, headers) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		table, string(encoded))
	if err != nil {
		return &rowstore.StoreError{Op: "ensure table " + table, Err: err}
	}
	return nil
}

// ReadTable returns all data rows in insertion order.
func (s *Store) ReadTable(ctx context.Context, table string) ([]rowstore.Row, error) {
	if err := s.EnsureStore(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT cells FROM sheet_row WHERE sheet = ? ORDER BY seq`, table)
	if err != nil {
		return nil, &rowstore.StoreError{Op: "read " + table, Err: err}
	}
	defer rows.Close()

	out := []rowstore.Row{}
	for rows.Next() {
		var cells string
		if err := rows.Scan(&cells); err != nil {
			return nil, &rowstore.StoreError{Op: "read " + table, Err: err}
		}
		var row rowstore.Row
		if err := json.Unmarshal([]byte(cells), &row); err != nil {
			return nil, &rowstore.StoreError{Op: "read " + table, Err: err}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &rowstore.StoreError{Op: "read " + table, Err: err}
	}
	return out, nil
}

// AppendRow inserts at the table end.
func (s *Store) AppendRow(ctx context.Context, table string, row rowstore.Row) error {
	if err := s.EnsureStore(ctx); err != nil {
		return err
	}
	cells, err := json.Marshal(row)
	if err != nil {
		return &rowstore.StoreError{Op: "append " + table, Err: err}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sheet_row (sheet, seq, cells)
		 VALUES (?, COALESCE((SELECT MAX(seq) FROM sheet_row WHERE sheet = ?), 0) + 1, ?)`,
		table, table, string(cells))
	if err != nil {
		return &rowstore.StoreError{Op: "append " + table, Err: err}
	}
	return nil
}

// FindRowPosition scans column A, matching the Sheets backend's O(n)
// contract and 1-based positions (header is position 1).
func (s *Store) FindRowPosition(ctx context.Context, table, id string) (int, error) {
	rows, err := s.ReadTable(ctx, table)
	if err != nil {
		return 0, err
	}
	for i, r := range rows {
		if rowstore.Cell(r, 0) == id {
			return i + 2, nil
		}
	}
	return 0, fmt.Errorf("%q in %s: %w", id, table, rowstore.ErrNotFound)
}

// OverwriteRow replaces the row at a 1-based position.
func (s *Store) OverwriteRow(ctx context.Context, table string, position int, row rowstore.Row) error {
	if err := s.EnsureStore(ctx); err != nil {
		return err
	}
	seq, err := s.seqAt(ctx, table, position)
	if err != nil {
		return err
	}
	cells, err := json.Marshal(row)
	if err != nil {
		return &rowstore.StoreError{Op: fmt.Sprintf("overwrite %s row %d", table, position), Err: err}
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE sheet_row SET cells = ? WHERE sheet = ? AND seq = ?`,
		string(cells), table, seq)
	if err != nil {
		return &rowstore.StoreError{Op: fmt.Sprintf("overwrite %s row %d", table, position), Err: err}
	}
	return nil
}

// DeleteRow removes the row at a 1-based position.
func (s *Store) DeleteRow(ctx context.Context, table string, position int) error {
	if err := s.EnsureStore(ctx); err != nil {
		return err
	}
	seq, err := s.seqAt(ctx, table, position)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM sheet_row WHERE sheet = ? AND seq = ?`, table, seq)
	if err != nil {
		return &rowstore.StoreError{Op: fmt.Sprintf("delete %s row %d", table, position), Err: err}
	}
	return nil
}

// EnsureTable registers a table added after initial creation.
func (s *Store) EnsureTable(ctx context.Context, table string, headers []string) error {
	if err := s.EnsureStore(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureTableLocked(ctx, table, headers)
}

// seqAt resolves a 1-based table position to the stored sequence number.
func (s *Store) seqAt(ctx context.Context, table string, position int) (int64, error) {
	op := fmt.Sprintf("locate %s row %d", table, position)
	if position < 2 {
		return 0, &rowstore.StoreError{Op: op, Err: fmt.Errorf("position out of range")}
	}
	var seq int64
	err := s.db.QueryRowContext(ctx,
		`SELECT seq FROM sheet_row WHERE sheet = ? ORDER BY seq LIMIT 1 OFFSET ?`,
		table, position-2).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, &rowstore.StoreError{Op: op, Err: fmt.Errorf("position out of range")}
	}
	if err != nil {
		return 0, &rowstore.StoreError{Op: op, Err: err}
	}
	return seq, nil
}

// Ensure interface compliance at compile time.
var _ rowstore.Store = (*Store)(nil)
