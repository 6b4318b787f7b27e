package reflection

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"compass/internal/adapters/rowstore"
	domain "compass/internal/domain/reflection"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// Table is the WeeklyReflections wire layout. The table postdates the
// store's initial schema, so every operation ensures it exists first
// (lazy migration; the row store guards the check with a process-local
// flag). WeekRating is a later trailing addition.
var Table = rowstore.Table{
	Name: "WeeklyReflections",
	Headers: []string{
		"ID", "WeekStartDate", "WentWell", "DidntGoWell", "Intentions",
		"CreatedAt", "UpdatedAt", "WeekRating",
	},
}

// RowStore implements Store over the generic row store.
type RowStore struct {
	rows rowstore.Store
}

// NewRowStore creates a new WeeklyReflection repository.
func NewRowStore(rows rowstore.Store) *RowStore {
	return &RowStore{rows: rows}
}

// List returns all reflections in table order.
func (s *RowStore) List(ctx context.Context) ([]domain.WeeklyReflection, error) {
	if err := s.rows.EnsureTable(ctx, Table.Name, Table.Headers); err != nil {
		return nil, err
	}
	rows, err := s.rows.ReadTable(ctx, Table.Name)
	if err != nil {
		return nil, err
	}
	out := make([]domain.WeeklyReflection, 0, len(rows))
	for _, row := range rows {
		out = append(out, decodeReflection(row))
	}
	return out, nil
}

// GetByWeek finds the reflection for a week key.
// POST: Returns rowstore.ErrNotFound when the week has no reflection
func (s *RowStore) GetByWeek(ctx context.Context, weekStartDate string) (domain.WeeklyReflection, error) {
	all, err := s.List(ctx)
	if err != nil {
		return domain.WeeklyReflection{}, err
	}
	for _, r := range all {
		if r.WeekStartDate == weekStartDate {
			return r, nil
		}
	}
	return domain.WeeklyReflection{}, fmt.Errorf("reflection for week %s: %w", weekStartDate, rowstore.ErrNotFound)
}

// Add appends the reflection. One-reflection-per-week is the caller's
// invariant to keep; the store cannot enforce uniqueness.
func (s *RowStore) Add(ctx context.Context, r domain.WeeklyReflection) error {
	if err := s.rows.EnsureTable(ctx, Table.Name, Table.Headers); err != nil {
		return err
	}
	return s.rows.AppendRow(ctx, Table.Name, encodeReflection(r))
}

// Update overwrites the reflection's row in place.
// POST: Returns rowstore.ErrNotFound if the id no longer exists
func (s *RowStore) Update(ctx context.Context, r domain.WeeklyReflection) error {
	if err := s.rows.EnsureTable(ctx, Table.Name, Table.Headers); err != nil {
		return err
	}
	pos, err := s.rows.FindRowPosition(ctx, Table.Name, r.ID)
	if err != nil {
		return err
	}
	return s.rows.OverwriteRow(ctx, Table.Name, pos, encodeReflection(r))
}

// Delete removes the reflection's row, re-opening its week.
// POST: Returns rowstore.ErrNotFound if the id no longer exists
func (s *RowStore) Delete(ctx context.Context, id string) error {
	if err := s.rows.EnsureTable(ctx, Table.Name, Table.Headers); err != nil {
		return err
	}
	pos, err := s.rows.FindRowPosition(ctx, Table.Name, id)
	if err != nil {
		return err
	}
	return s.rows.DeleteRow(ctx, Table.Name, pos)
}

func encodeReflection(r domain.WeeklyReflection) rowstore.Row {
	rating := ""
	if r.WeekRating != nil {
		rating = strconv.Itoa(*r.WeekRating)
	}
	return rowstore.Row{
		r.ID,
		r.WeekStartDate,
		r.WentWell,
		r.DidntGoWell,
		r.Intentions,
		encodeTime(r.CreatedAt),
		encodeTime(r.UpdatedAt),
		rating,
	}
}

func decodeReflection(row rowstore.Row) domain.WeeklyReflection {
	var rating *int
	if n, err := strconv.Atoi(rowstore.Cell(row, 7)); err == nil {
		rating = &n
	}
	return domain.WeeklyReflection{
		ID:            rowstore.Cell(row, 0),
		WeekStartDate: rowstore.Cell(row, 1),
		WentWell:      rowstore.Cell(row, 2),
		DidntGoWell:   rowstore.Cell(row, 3),
		Intentions:    rowstore.Cell(row, 4),
		CreatedAt:     decodeTime(rowstore.Cell(row, 5)),
		UpdatedAt:     decodeTime(rowstore.Cell(row, 6)),
		WeekRating:    rating,
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
