package reflection

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"compass/internal/adapters/rowstore"
	"compass/internal/adapters/rowstore/memory"
	domain "compass/internal/domain/reflection"
)

func intp(v int) *int { return &v }

func ts(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func TestRowRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		r    domain.WeeklyReflection
	}{
		{
			"fully populated",
			domain.WeeklyReflection{
				ID: "w1", WeekStartDate: "2025-06-02",
				WentWell: "ran 3x", DidntGoWell: "late nights", Intentions: "sleep earlier",
				CreatedAt: ts("2025-06-08T20:00:00Z"), UpdatedAt: ts("2025-06-08T20:05:00Z"),
				WeekRating: intp(4),
			},
		},
		{
			"all optional text empty",
			domain.WeeklyReflection{ID: "w2", WeekStartDate: "2025-06-09"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := decodeReflection(encodeReflection(tc.r))
			if !reflect.DeepEqual(got, tc.r) {
				t.Errorf("round trip:\n got  %+v\n want %+v", got, tc.r)
			}
		})
	}
}

func TestDecodeLegacyRowWithoutRating(t *testing.T) {
	row := rowstore.Row{"w1", "2025-06-02", "a", "b", "c", "", ""}
	got := decodeReflection(row)
	if got.WeekRating != nil {
		t.Error("missing WeekRating cell must decode as nil")
	}
}

func TestGetByWeek(t *testing.T) {
	// The reflections table is created lazily: start from a store that
	// does not know it yet.
	store := NewRowStore(memory.NewStore())
	ctx := context.Background()

	if _, err := store.GetByWeek(ctx, "2025-06-02"); !errors.Is(err, rowstore.ErrNotFound) {
		t.Fatalf("GetByWeek on empty table = %v, want ErrNotFound", err)
	}

	r := domain.WeeklyReflection{ID: "w1", WeekStartDate: "2025-06-02", WentWell: "x"}
	if err := store.Add(ctx, r); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := store.GetByWeek(ctx, "2025-06-02")
	if err != nil || got.ID != "w1" {
		t.Fatalf("GetByWeek = %+v, %v", got, err)
	}
	if _, err := store.GetByWeek(ctx, "2025-06-09"); !errors.Is(err, rowstore.ErrNotFound) {
		t.Errorf("other week = %v, want ErrNotFound", err)
	}

	if err := store.Delete(ctx, "w1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByWeek(ctx, "2025-06-02"); !errors.Is(err, rowstore.ErrNotFound) {
		t.Errorf("after delete = %v, want ErrNotFound", err)
	}
}
