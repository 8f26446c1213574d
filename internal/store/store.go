package store

import (
	"context"
	"errors"

	"aether/internal/session"
)

var ErrDuplicateShare = errors.New("share id already exists")

// Store persists shared snapshots. Getters return nil, nil when nothing
// matches.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	SaveSnapshot(ctx context.Context, snap session.SharedSnapshot) error
	GetSnapshot(ctx context.Context, shareID string) (*session.SharedSnapshot, error)
	ListSnapshots(ctx context.Context, worldID string) ([]SnapshotSummary, error)
	SearchSnapshots(ctx context.Context, query, worldID string) ([]SearchResult, error)
	ReplaceSnapshot(ctx context.Context, snap session.SharedSnapshot) (bool, error)
	DeleteSnapshot(ctx context.Context, shareID string) (bool, error)

	RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}
