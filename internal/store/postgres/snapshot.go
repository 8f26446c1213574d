package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"aether/internal/session"
	"aether/internal/store"
)

func (c *Client) SaveSnapshot(ctx context.Context, snap session.SharedSnapshot) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists int
	err = tx.QueryRow(ctx, `SELECT 1 FROM shared_worlds WHERE share_id = $1`, snap.ShareID).Scan(&exists)
	switch {
	case err == nil:
		return fmt.Errorf("saving snapshot %s: %w", snap.ShareID, store.ErrDuplicateShare)
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("checking share id: %w", err)
	}

	if err := insertSnapshot(ctx, tx, snap); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// ReplaceSnapshot swaps any stored snapshot with the same share id for snap
// in one transaction. It reports whether a snapshot was replaced.
func (c *Client) ReplaceSnapshot(ctx context.Context, snap session.SharedSnapshot) (bool, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM shared_worlds WHERE share_id = $1`, snap.ShareID)
	if err != nil {
		return false, fmt.Errorf("deleting snapshot: %w", err)
	}

	if err := insertSnapshot(ctx, tx, snap); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing snapshot: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func insertSnapshot(ctx context.Context, tx pgx.Tx, snap session.SharedSnapshot) error {
	var snapshotID int64
	err := tx.QueryRow(ctx, `
INSERT INTO shared_worlds (share_id, world_id, world_name, final_state_id, summary, story, created_at, search_vector)
VALUES ($1, $2, $3, $4, $5, $6, $7,
    setweight(to_tsvector('simple', coalesce($8, '')), 'A') ||
    setweight(to_tsvector('simple', coalesce($9, '')), 'B') ||
    setweight(to_tsvector('simple', coalesce($6, '')), 'C')
)
RETURNING id
`,
		snap.ShareID,
		snap.WorldID,
		snap.WorldName,
		snap.FinalStateID,
		snap.Summary,
		store.Story(snap),
		snap.CreatedAt,
		store.SearchText(snap.WorldName),
		store.SearchText(snap.Summary),
	).Scan(&snapshotID)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	batch := &pgx.Batch{}
	for _, entry := range snap.Timeline {
		batch.Queue(`
INSERT INTO timeline_entries (snapshot_id, entry_id, sequence, source_text, target_state_id, label, anchors, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`,
			snapshotID,
			entry.ID,
			entry.Sequence,
			entry.SourceText,
			entry.Result.TargetStateID,
			entry.Result.Label,
			nonNil(entry.Result.AffectedAnchors),
			entry.CreatedAt,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting timeline entries: %w", err)
		}
	}
	return nil
}

func (c *Client) GetSnapshot(ctx context.Context, shareID string) (*session.SharedSnapshot, error) {
	var snapshotID int64
	snap := session.SharedSnapshot{}

	err := c.pool.QueryRow(ctx, `
SELECT id, share_id, world_id, world_name, final_state_id, summary, created_at
FROM shared_worlds
WHERE share_id = $1
`, shareID).Scan(&snapshotID, &snap.ShareID, &snap.WorldID, &snap.WorldName, &snap.FinalStateID, &snap.Summary, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}

	rows, err := c.pool.Query(ctx, `
SELECT entry_id, sequence, source_text, target_state_id, label, anchors, created_at
FROM timeline_entries
WHERE snapshot_id = $1
ORDER BY sequence ASC
`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("fetching timeline: %w", err)
	}
	defer rows.Close()

	snap.Timeline = []session.Entry{}
	for rows.Next() {
		var entry session.Entry
		err := rows.Scan(&entry.ID, &entry.Sequence, &entry.SourceText, &entry.Result.TargetStateID, &entry.Result.Label, &entry.Result.AffectedAnchors, &entry.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning timeline entry: %w", err)
		}
		entry.Result.AffectedAnchors = nonNil(entry.Result.AffectedAnchors)
		snap.Timeline = append(snap.Timeline, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timeline: %w", err)
	}
	return &snap, nil
}

func (c *Client) ListSnapshots(ctx context.Context, worldID string) ([]store.SnapshotSummary, error) {
	rows, err := c.pool.Query(ctx, `
SELECT s.share_id, s.world_id, s.world_name, s.final_state_id, s.summary, s.created_at,
    (SELECT COUNT(*) FROM timeline_entries t WHERE t.snapshot_id = s.id) AS entries
FROM shared_worlds s
WHERE ($1 = '' OR s.world_id = $1)
ORDER BY s.created_at DESC, s.id DESC
`, worldID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	summaries := []store.SnapshotSummary{}
	for rows.Next() {
		var s store.SnapshotSummary
		var entries int64
		if err := rows.Scan(&s.ShareID, &s.WorldID, &s.WorldName, &s.FinalStateID, &s.Summary, &s.CreatedAt, &entries); err != nil {
			return nil, fmt.Errorf("scanning snapshot summary: %w", err)
		}
		s.Entries = int(entries)
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return summaries, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (c *Client) DeleteSnapshot(ctx context.Context, shareID string) (bool, error) {
	tag, err := c.pool.Exec(ctx, `DELETE FROM shared_worlds WHERE share_id = $1`, shareID)
	if err != nil {
		return false, fmt.Errorf("deleting snapshot: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
