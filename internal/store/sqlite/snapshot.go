package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"aether/internal/session"
	"aether/internal/store"
)

func (c *Client) SaveSnapshot(ctx context.Context, snap session.SharedSnapshot) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM shared_worlds WHERE share_id = ?`, snap.ShareID).Scan(&exists)
	switch {
	case err == nil:
		return fmt.Errorf("saving snapshot %s: %w", snap.ShareID, store.ErrDuplicateShare)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("checking share id: %w", err)
	}

	if err := insertSnapshot(ctx, tx, snap); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// ReplaceSnapshot swaps any stored snapshot with the same share id for snap
// in one transaction. It reports whether a snapshot was replaced.
func (c *Client) ReplaceSnapshot(ctx context.Context, snap session.SharedSnapshot) (bool, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM shared_worlds WHERE share_id = ?`, snap.ShareID)
	if err != nil {
		return false, fmt.Errorf("deleting snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading deleted rows: %w", err)
	}

	if err := insertSnapshot(ctx, tx, snap); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing snapshot: %w", err)
	}
	return n > 0, nil
}

func insertSnapshot(ctx context.Context, tx *sql.Tx, snap session.SharedSnapshot) error {
	res, err := tx.ExecContext(ctx, `
	INSERT INTO shared_worlds (share_id, world_id, world_name, final_state_id, summary, story, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		snap.ShareID,
		snap.WorldID,
		snap.WorldName,
		snap.FinalStateID,
		snap.Summary,
		store.Story(snap),
		formatTime(snap.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	snapshotID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading snapshot id: %w", err)
	}

	for _, entry := range snap.Timeline {
		anchorsJSON, err := json.Marshal(entry.Result.AffectedAnchors)
		if err != nil {
			return fmt.Errorf("marshaling anchors: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
		INSERT INTO timeline_entries (snapshot_id, entry_id, sequence, source_text, target_state_id, label, anchors, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			snapshotID,
			entry.ID,
			entry.Sequence,
			entry.SourceText,
			entry.Result.TargetStateID,
			entry.Result.Label,
			string(anchorsJSON),
			formatTime(entry.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting timeline entry %d: %w", entry.Sequence, err)
		}
	}
	return nil
}

func (c *Client) GetSnapshot(ctx context.Context, shareID string) (*session.SharedSnapshot, error) {
	var snapshotID int64
	var createdAt string
	snap := session.SharedSnapshot{}

	err := c.db.QueryRowContext(ctx, `
	SELECT id, share_id, world_id, world_name, final_state_id, summary, created_at
	FROM shared_worlds
	WHERE share_id = ?
	`, shareID).Scan(&snapshotID, &snap.ShareID, &snap.WorldID, &snap.WorldName, &snap.FinalStateID, &snap.Summary, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}
	if snap.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	snap.Timeline, err = c.fetchTimeline(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) fetchTimeline(ctx context.Context, snapshotID int64) ([]session.Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT entry_id, sequence, source_text, target_state_id, label, anchors, created_at
	FROM timeline_entries
	WHERE snapshot_id = ?
	ORDER BY sequence ASC
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("fetching timeline: %w", err)
	}
	defer rows.Close()

	entries := []session.Entry{}
	for rows.Next() {
		var entry session.Entry
		var anchorsJSON, createdAt string
		err := rows.Scan(&entry.ID, &entry.Sequence, &entry.SourceText, &entry.Result.TargetStateID, &entry.Result.Label, &anchorsJSON, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scanning timeline entry: %w", err)
		}
		entry.Result.AffectedAnchors, err = decodeAnchors(anchorsJSON)
		if err != nil {
			return nil, err
		}
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timeline: %w", err)
	}
	return entries, nil
}

func (c *Client) ListSnapshots(ctx context.Context, worldID string) ([]store.SnapshotSummary, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT s.share_id, s.world_id, s.world_name, s.final_state_id, s.summary, s.created_at,
		   (SELECT COUNT(*) FROM timeline_entries t WHERE t.snapshot_id = s.id) AS entries
	FROM shared_worlds s
	WHERE (? = '' OR s.world_id = ?)
	ORDER BY s.created_at DESC, s.id DESC
	`, worldID, worldID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	summaries := []store.SnapshotSummary{}
	for rows.Next() {
		var s store.SnapshotSummary
		var createdAt string
		if err := rows.Scan(&s.ShareID, &s.WorldID, &s.WorldName, &s.FinalStateID, &s.Summary, &createdAt, &s.Entries); err != nil {
			return nil, fmt.Errorf("scanning snapshot summary: %w", err)
		}
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return summaries, nil
}

func decodeAnchors(value string) ([]string, error) {
	anchors := []string{}
	if value == "" {
		return anchors, nil
	}
	if err := json.Unmarshal([]byte(value), &anchors); err != nil {
		return nil, fmt.Errorf("unmarshaling anchors: %w", err)
	}
	if anchors == nil {
		anchors = []string{}
	}
	return anchors, nil
}

// DeleteSnapshot removes a snapshot and its timeline. It reports whether a
// snapshot with that share id existed.
func (c *Client) DeleteSnapshot(ctx context.Context, shareID string) (bool, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM shared_worlds WHERE share_id = ?`, shareID)
	if err != nil {
		return false, fmt.Errorf("deleting snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading deleted rows: %w", err)
	}
	return n > 0, nil
}
