package reflection

import (
	"context"

	domain "compass/internal/domain/reflection"
)

// Store persists WeeklyReflection state. GetByWeek returns
// rowstore.ErrNotFound when no reflection exists for the week; the
// closeout state machine derives the week's lock state from exactly that.
type Store interface {
	List(ctx context.Context) ([]domain.WeeklyReflection, error)
	GetByWeek(ctx context.Context, weekStartDate string) (domain.WeeklyReflection, error)
	Add(ctx context.Context, r domain.WeeklyReflection) error
	Update(ctx context.Context, r domain.WeeklyReflection) error
	Delete(ctx context.Context, id string) error
}
