package replay

import (
	"context"

	"aether/internal/session"
)

// Store is the part of store.Store that replay writes through.
type Store interface {
	EnsureSchema(ctx context.Context) error
	GetSnapshot(ctx context.Context, shareID string) (*session.SharedSnapshot, error)
	SaveSnapshot(ctx context.Context, snap session.SharedSnapshot) error
	ReplaceSnapshot(ctx context.Context, snap session.SharedSnapshot) (bool, error)
}
