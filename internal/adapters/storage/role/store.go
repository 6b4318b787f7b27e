package role

import (
	"context"

	domain "compass/internal/domain/role"
)

// Store persists Role state.
type Store interface {
	List(ctx context.Context) ([]domain.Role, error)
	Add(ctx context.Context, r domain.Role) error
	Update(ctx context.Context, r domain.Role) error
	Delete(ctx context.Context, id string) error
}
