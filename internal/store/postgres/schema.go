package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// All statements run in one implicit transaction; IF NOT EXISTS keeps
	// repeated runs harmless.
	ddl := `
CREATE TABLE IF NOT EXISTS shared_worlds (
    id             BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    share_id       TEXT NOT NULL,
    world_id       TEXT NOT NULL,
    world_name     TEXT NOT NULL,
    final_state_id TEXT NOT NULL,
    summary        TEXT DEFAULT '',
    story          TEXT DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL,
    CONSTRAINT uq_share_id UNIQUE (share_id)
);

ALTER TABLE shared_worlds ADD COLUMN IF NOT EXISTS search_vector TSVECTOR;

CREATE TABLE IF NOT EXISTS timeline_entries (
    id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    snapshot_id     BIGINT NOT NULL REFERENCES shared_worlds(id) ON DELETE CASCADE,
    entry_id        TEXT NOT NULL,
    sequence        INTEGER NOT NULL,
    source_text     TEXT NOT NULL,
    target_state_id TEXT NOT NULL,
    label           TEXT NOT NULL,
    anchors         TEXT[] DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL,
    CONSTRAINT uq_entry_sequence UNIQUE (snapshot_id, sequence)
);

CREATE INDEX IF NOT EXISTS idx_shared_worlds_search ON shared_worlds USING GIN (search_vector);
CREATE INDEX IF NOT EXISTS idx_shared_worlds_world ON shared_worlds (world_id);
CREATE INDEX IF NOT EXISTS idx_shared_worlds_created ON shared_worlds (created_at);
CREATE INDEX IF NOT EXISTS idx_timeline_entries_snapshot ON timeline_entries (snapshot_id);
CREATE INDEX IF NOT EXISTS idx_timeline_entries_target ON timeline_entries (target_state_id);
`

	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("executing DDL: %w", err)
	}
	return nil
}
