// Package rowstore defines the generic table-of-rows contract that the
// domain repositories are built on. The backing store offers no primary
// keys, transactions, or uniqueness constraints: a table is an ordered
// list of string rows under a fixed header row, and column A holds the
// entity's id (or key). Database semantics such as lookup by id, upsert
// and delete-by-id are fabricated above this interface.
package rowstore

import (
	"context"
	"errors"
	"fmt"
)

// Row is one data row of a table, header excluded.
type Row []string

// Table names a table and its fixed header row. Column order is the wire
// contract; consumers must tolerate extra trailing blank cells and must
// never reorder columns without a migration.
type Table struct {
	Name    string
	Headers []string
}

// ErrNotFound indicates an id/key absent at the moment of a position
// lookup. Repositories branch on it to choose insert-vs-update semantics.
var ErrNotFound = errors.New("row not found")

// StoreError is a transport or remote-API failure, carrying the upstream
// status and response body.
type StoreError struct {
	Op     string // operation that failed, e.g. "append WeeklyGoals"
	Status int    // HTTP status, 0 when the request never completed
	Body   string // response body, best effort
	Err    error  // underlying error, if any
}

func (e *StoreError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("row store: %s: status %d: %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("row store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store is the generic adapter over named tables. Implementations ensure
// the backing store exists before serving any call; callers do not need
// their own guard and may call concurrently.
//
// Positions are 1-based and include the header row (the first data row is
// position 2). A position computed by FindRowPosition is invalidated by
// any call that changes the table's row count; callers must not cache
// positions across such calls.
type Store interface {
	// EnsureStore idempotently discovers or creates the backing store and
	// its initial tables with header rows, memoizing the result for the
	// process lifetime.
	EnsureStore(ctx context.Context) error

	// ReadTable returns all rows after the header, preserving order. An
	// empty table yields an empty slice.
	ReadTable(ctx context.Context, table string) ([]Row, error)

	// AppendRow inserts at the table end. It never fails on duplicate id:
	// duplicate prevention is the repository's job.
	AppendRow(ctx context.Context, table string, row Row) error

	// FindRowPosition scans column A for an exact match and returns the
	// 1-based position, or ErrNotFound. O(n) per call; callers must not
	// invoke it in a tight loop without batching.
	FindRowPosition(ctx context.Context, table, id string) (int, error)

	// OverwriteRow replaces the full row at the given position.
	OverwriteRow(ctx context.Context, table string, position int, row Row) error

	// DeleteRow removes the row at the given position, shifting subsequent
	// rows up.
	DeleteRow(ctx context.Context, table string, position int) error

	// EnsureTable adds a table with headers if absent. Used for tables
	// introduced after the store was first created (lazy migration);
	// implementations guard with a process-local flag so repeated calls
	// are cheap.
	EnsureTable(ctx context.Context, table string, headers []string) error
}

// Cell returns row[i], or "" when the row is too short. Decoders use it so
// partially written legacy rows never fail to decode.
func Cell(row Row, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
