package settings

import (
	"context"

	domain "compass/internal/domain/settings"
)

// Store persists settings entries. Set upserts by key.
type Store interface {
	List(ctx context.Context) ([]domain.Entry, error)
	Set(ctx context.Context, key, value string) error
}
