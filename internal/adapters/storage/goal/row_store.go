package goal

import (
	"context"
	"strconv"
	"time"

	"compass/internal/adapters/rowstore"
	domain "compass/internal/domain/goal"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// Table is the WeeklyGoals wire layout. The first eleven columns are the
// original contract; Recurring, RecurringEnds and RecurringRemaining were
// appended later, so rows written before then are short; the decoder
// treats the missing cells as unset.
var Table = rowstore.Table{
	Name: "WeeklyGoals",
	Headers: []string{
		"ID", "WeekStartDate", "RoleID", "GoalText", "Quadrant", "Status", "Notes",
		"CalendarEventID", "CalendarSource", "CreatedAt", "UpdatedAt",
		"Recurring", "RecurringEnds", "RecurringRemaining",
	},
}

// RowStore implements Store over the generic row store.
type RowStore struct {
	rows rowstore.Store
}

// NewRowStore creates a new WeeklyGoal repository.
func NewRowStore(rows rowstore.Store) *RowStore {
	return &RowStore{rows: rows}
}

// List returns every goal across all weeks, in table order.
func (s *RowStore) List(ctx context.Context) ([]domain.WeeklyGoal, error) {
	rows, err := s.rows.ReadTable(ctx, Table.Name)
	if err != nil {
		return nil, err
	}
	out := make([]domain.WeeklyGoal, 0, len(rows))
	for _, row := range rows {
		out = append(out, decodeGoal(row))
	}
	return out, nil
}

// ListByWeek returns the goals whose weekStartDate equals the given week
// key. The store offers no server-side filtering, so this reads the full
// table and filters client-side.
func (s *RowStore) ListByWeek(ctx context.Context, weekStartDate string) ([]domain.WeeklyGoal, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.WeeklyGoal, 0)
	for _, g := range all {
		if g.WeekStartDate == weekStartDate {
			out = append(out, g)
		}
	}
	return out, nil
}

// Add appends the goal. The caller must have generated the id.
func (s *RowStore) Add(ctx context.Context, g domain.WeeklyGoal) error {
	return s.rows.AppendRow(ctx, Table.Name, encodeGoal(g))
}

// Update overwrites the goal's row in place (same id). Moving a goal to
// another week is an Update with a changed weekStartDate.
// POST: Returns rowstore.ErrNotFound if the id no longer exists
func (s *RowStore) Update(ctx context.Context, g domain.WeeklyGoal) error {
	pos, err := s.rows.FindRowPosition(ctx, Table.Name, g.ID)
	if err != nil {
		return err
	}
	return s.rows.OverwriteRow(ctx, Table.Name, pos, encodeGoal(g))
}

// Delete removes the goal's row.
// POST: Returns rowstore.ErrNotFound if the id no longer exists
func (s *RowStore) Delete(ctx context.Context, id string) error {
	pos, err := s.rows.FindRowPosition(ctx, Table.Name, id)
	if err != nil {
		return err
	}
	return s.rows.DeleteRow(ctx, Table.Name, pos)
}

func encodeGoal(g domain.WeeklyGoal) rowstore.Row {
	remaining := ""
	if g.RecurringRemaining != nil {
		remaining = strconv.Itoa(*g.RecurringRemaining)
	}
	return rowstore.Row{
		g.ID,
		g.WeekStartDate,
		g.RoleID,
		g.GoalText,
		strconv.Itoa(int(g.Quadrant)),
		string(g.Status),
		g.Notes,
		g.CalendarEventID,
		string(g.CalendarSource),
		encodeTime(g.CreatedAt),
		encodeTime(g.UpdatedAt),
		strconv.FormatBool(g.Recurring),
		g.RecurringEnds,
		remaining,
	}
}

// decodeGoal is total: a blank quadrant falls back to Q2, a blank status
// to not_started, and the trailing recurring cells to unset. Unlike
// Roles.Active, a blank Recurring cell means false: rows written before
// the column existed were one-shot goals.
func decodeGoal(row rowstore.Row) domain.WeeklyGoal {
	quadrant := domain.Quadrant(2)
	if q, err := strconv.Atoi(rowstore.Cell(row, 4)); err == nil && domain.Quadrant(q).Valid() {
		quadrant = domain.Quadrant(q)
	}
	status := domain.Status(rowstore.Cell(row, 5))
	if status == "" {
		status = domain.StatusNotStarted
	}
	var remaining *int
	if n, err := strconv.Atoi(rowstore.Cell(row, 13)); err == nil {
		remaining = &n
	}
	return domain.WeeklyGoal{
		ID:                 rowstore.Cell(row, 0),
		WeekStartDate:      rowstore.Cell(row, 1),
		RoleID:             rowstore.Cell(row, 2),
		GoalText:           rowstore.Cell(row, 3),
		Quadrant:           quadrant,
		Status:             status,
		Notes:              rowstore.Cell(row, 6),
		CalendarEventID:    rowstore.Cell(row, 7),
		CalendarSource:     domain.CalendarSource(rowstore.Cell(row, 8)),
		CreatedAt:          decodeTime(rowstore.Cell(row, 9)),
		UpdatedAt:          decodeTime(rowstore.Cell(row, 10)),
		Recurring:          rowstore.Cell(row, 11) == "true",
		RecurringEnds:      rowstore.Cell(row, 12),
		RecurringRemaining: remaining,
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
