package optimistic

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestMutateCommitsAndKeepsLocalState(t *testing.T) {
	c := New[string]()
	c.Replace([]string{"a", "b"})

	err := c.Mutate(context.Background(),
		func(items []string) []string { return append(items, "c") },
		func(_ context.Context) error { return nil })
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if got := c.Items(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("items = %v", got)
	}
}

func TestMutateIsVisibleBeforeCommitResolves(t *testing.T) {
	c := New[int]()
	c.Replace([]int{1})

	var seenDuringCommit []int
	c.Mutate(context.Background(),
		func(items []int) []int { return append(items, 2) },
		func(_ context.Context) error {
			seenDuringCommit = c.Items()
			return nil
		})
	if !reflect.DeepEqual(seenDuringCommit, []int{1, 2}) {
		t.Errorf("state during commit = %v, want the optimistic state", seenDuringCommit)
	}
}

func TestMutateRollsBackToExactSnapshot(t *testing.T) {
	c := New[string]()
	before := []string{"a", "b"}
	c.Replace(before)
	boom := errors.New("remote write failed")

	err := c.Mutate(context.Background(),
		func(items []string) []string { return items[:1] }, // optimistic delete
		func(_ context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the commit error re-surfaced", err)
	}
	if got := c.Items(); !reflect.DeepEqual(got, before) {
		t.Errorf("after rollback items = %v, want %v", got, before)
	}
}

func TestMutateReloadReplacesWithAuthoritativeState(t *testing.T) {
	c := New[string]()
	c.Replace([]string{"a"})
	boom := errors.New("remote write failed")
	authoritative := []string{"x", "y"}

	err := c.MutateReload(context.Background(),
		func(items []string) []string { return append(items, "b") },
		func(_ context.Context) error { return boom },
		func(_ context.Context) ([]string, error) { return authoritative, nil })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want commit error", err)
	}
	if got := c.Items(); !reflect.DeepEqual(got, authoritative) {
		t.Errorf("after reload items = %v, want %v", got, authoritative)
	}
}

func TestMutateReloadKeepsOptimisticStateWhenReloadFails(t *testing.T) {
	c := New[string]()
	c.Replace([]string{"a"})
	boom := errors.New("remote write failed")

	err := c.MutateReload(context.Background(),
		func(items []string) []string { return append(items, "b") },
		func(_ context.Context) error { return boom },
		func(_ context.Context) ([]string, error) { return nil, errors.New("still down") })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want commit error", err)
	}
	if got := c.Items(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("items = %v, want optimistic state kept", got)
	}
}

func TestApplyGetsItsOwnCopy(t *testing.T) {
	c := New[int]()
	c.Replace([]int{1, 2, 3})
	boom := errors.New("no")

	// An apply that mutates its argument in place must not corrupt the
	// snapshot used for rollback.
	c.Mutate(context.Background(),
		func(items []int) []int {
			items[0] = 99
			return items
		},
		func(_ context.Context) error { return boom })
	if got := c.Items(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("after rollback items = %v, want original", got)
	}
}
