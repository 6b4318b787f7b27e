// Package optimistic implements the apply-locally, commit-remotely,
// reconcile-on-failure discipline used on every write path. Consolidating
// it in one combinator guarantees the rollback step is never accidentally
// skipped at a call site.
package optimistic

import (
	"context"
	"log/slog"
	"sync"
)

// Collection is an in-memory slice of entities owned by exactly one
// consumer (a session scope). Readers always see the optimistic state;
// a failed commit restores the exact pre-mutation snapshot or reloads
// authoritative state, and the error is re-surfaced to the caller either
// way, never swallowed here.
type Collection[T any] struct {
	mu    sync.RWMutex
	items []T
}

// New creates an empty collection.
func New[T any]() *Collection[T] {
	return &Collection[T]{}
}

// Items returns a copy of the current contents.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Replace swaps in authoritative contents, e.g. after a repository load.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
}

// Mutate applies the mutation to the in-memory items synchronously (so
// readers see it with zero round-trip latency), then runs commit. If
// commit fails the pre-mutation snapshot is restored and the error
// returned. apply receives its own copy and returns the new contents.
func (c *Collection[T]) Mutate(ctx context.Context, apply func(items []T) []T, commit func(ctx context.Context) error) error {
	snapshot := c.applyLocal(apply)
	if err := commit(ctx); err != nil {
		c.Replace(snapshot)
		return err
	}
	return nil
}

// MutateReload applies the mutation and runs commit like Mutate, but on
// failure discards local state and reloads authoritative contents instead
// of restoring the snapshot. Update paths use it so a rollback after an
// earlier failed optimistic update cannot compound divergence. When the
// reload itself fails the optimistic state is left in place (the store is
// unreachable anyway) and the commit error is still returned.
func (c *Collection[T]) MutateReload(ctx context.Context, apply func(items []T) []T, commit func(ctx context.Context) error, reload func(ctx context.Context) ([]T, error)) error {
	c.applyLocal(apply)
	if err := commit(ctx); err != nil {
		fresh, loadErr := reload(ctx)
		if loadErr != nil {
			slog.Warn("optimistic_reload_failed", "error", loadErr.Error())
		} else {
			c.Replace(fresh)
		}
		return err
	}
	return nil
}

func (c *Collection[T]) applyLocal(apply func(items []T) []T) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := append([]T(nil), c.items...)
	c.items = apply(append([]T(nil), c.items...))
	return snapshot
}
