package goal

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"compass/internal/adapters/rowstore"
	"compass/internal/adapters/rowstore/memory"
	domain "compass/internal/domain/goal"
)

func intp(v int) *int { return &v }

func ts(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func newStore(t *testing.T) *RowStore {
	t.Helper()
	return NewRowStore(memory.NewStore(Table))
}

func TestRowRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		goal domain.WeeklyGoal
	}{
		{
			"all optional fields populated",
			domain.WeeklyGoal{
				ID:                 "g1",
				WeekStartDate:      "2025-06-02",
				RoleID:             "r1",
				GoalText:           "Run 3x",
				Quadrant:           2,
				Status:             domain.StatusInProgress,
				Notes:              "morning runs",
				CalendarEventID:    "evt-1",
				CalendarSource:     domain.CalendarGoogle,
				CreatedAt:          ts("2025-06-02T08:00:00Z"),
				UpdatedAt:          ts("2025-06-03T09:30:00Z"),
				Recurring:          true,
				RecurringEnds:      "2025-07-07",
				RecurringRemaining: intp(4),
			},
		},
		{
			"all optional fields empty",
			domain.WeeklyGoal{
				ID:            "g2",
				WeekStartDate: "2025-06-02",
				GoalText:      "Read",
				Quadrant:      4,
				Status:        domain.StatusNotStarted,
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := decodeGoal(encodeGoal(tc.goal))
			if !reflect.DeepEqual(got, tc.goal) {
				t.Errorf("round trip:\n got  %+v\n want %+v", got, tc.goal)
			}
		})
	}
}

func TestDecodeToleratesLegacyShortRows(t *testing.T) {
	// A row written before the recurring columns (and with blank optionals)
	// must decode without error and with sane defaults.
	row := rowstore.Row{"g1", "2025-06-02", "", "Run", "", "", ""}
	got := decodeGoal(row)
	if got.Quadrant != 2 {
		t.Errorf("blank quadrant = %d, want default 2", got.Quadrant)
	}
	if got.Status != domain.StatusNotStarted {
		t.Errorf("blank status = %q, want not_started", got.Status)
	}
	if got.Recurring || got.RecurringEnds != "" || got.RecurringRemaining != nil {
		t.Error("missing recurring cells must decode as unset")
	}
	if !got.CreatedAt.IsZero() {
		t.Error("missing createdAt must decode to zero time")
	}
}

func TestDecodeGarbageCellsNeverRejects(t *testing.T) {
	row := rowstore.Row{"g1", "2025-06-02", "r1", "Run", "nine", "someday", "", "", "", "yesterday", "", "maybe", "", "lots"}
	got := decodeGoal(row)
	if got.Quadrant != 2 {
		t.Errorf("garbage quadrant = %d, want default 2", got.Quadrant)
	}
	if got.RecurringRemaining != nil {
		t.Error("garbage remaining must decode as nil")
	}
	if got.Recurring {
		t.Error("non-\"true\" recurring cell must decode as false")
	}
}

func TestListByWeekFiltersClientSide(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	for _, g := range []domain.WeeklyGoal{
		{ID: "g1", WeekStartDate: "2025-06-02", GoalText: "a", Quadrant: 1, Status: domain.StatusNotStarted},
		{ID: "g2", WeekStartDate: "2025-06-09", GoalText: "b", Quadrant: 2, Status: domain.StatusNotStarted},
		{ID: "g3", WeekStartDate: "2025-06-02", GoalText: "c", Quadrant: 3, Status: domain.StatusNotStarted},
	} {
		if err := store.Add(ctx, g); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	got, err := store.ListByWeek(ctx, "2025-06-02")
	if err != nil {
		t.Fatalf("ListByWeek: %v", err)
	}
	if len(got) != 2 || got[0].ID != "g1" || got[1].ID != "g3" {
		t.Errorf("ListByWeek = %+v", got)
	}

	empty, err := store.ListByWeek(ctx, "2025-07-07")
	if err != nil || len(empty) != 0 {
		t.Errorf("empty week = %v, %v", empty, err)
	}
}

func TestUpdateMissingIDReturnsNotFound(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	err := store.Update(ctx, domain.WeeklyGoal{ID: "gone", WeekStartDate: "2025-06-02", GoalText: "x", Quadrant: 1, Status: domain.StatusNotStarted})
	if !errors.Is(err, rowstore.ErrNotFound) {
		t.Errorf("Update missing = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "gone"); !errors.Is(err, rowstore.ErrNotFound) {
		t.Errorf("Delete missing = %v, want ErrNotFound", err)
	}
}

func TestUpdateRewritesInPlace(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	g := domain.WeeklyGoal{ID: "g1", WeekStartDate: "2025-06-02", GoalText: "Run", Quadrant: 2, Status: domain.StatusNotStarted}
	if err := store.Add(ctx, g); err != nil {
		t.Fatalf("Add: %v", err)
	}

	g.WeekStartDate = "2025-06-09" // a "move": same id, new week
	g.Status = domain.StatusInProgress
	if err := store.Update(ctx, g); err != nil {
		t.Fatalf("Update: %v", err)
	}

	all, _ := store.List(ctx)
	if len(all) != 1 {
		t.Fatalf("expected one row after in-place update, got %d", len(all))
	}
	if all[0].WeekStartDate != "2025-06-09" || all[0].Status != domain.StatusInProgress {
		t.Errorf("updated goal = %+v", all[0])
	}
}
