package goal

import (
	"context"

	domain "compass/internal/domain/goal"
)

// Store persists WeeklyGoal state.
type Store interface {
	List(ctx context.Context) ([]domain.WeeklyGoal, error)
	ListByWeek(ctx context.Context, weekStartDate string) ([]domain.WeeklyGoal, error)
	Add(ctx context.Context, g domain.WeeklyGoal) error
	Update(ctx context.Context, g domain.WeeklyGoal) error
	Delete(ctx context.Context, id string) error
}
