package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS shared_worlds (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		share_id       TEXT NOT NULL,
		world_id       TEXT NOT NULL,
		world_name     TEXT NOT NULL,
		final_state_id TEXT NOT NULL,
		summary        TEXT DEFAULT '',
		story          TEXT DEFAULT '',
		created_at     TEXT NOT NULL,
		CONSTRAINT uq_share_id UNIQUE (share_id)
	);

	CREATE TABLE IF NOT EXISTS timeline_entries (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		snapshot_id     INTEGER NOT NULL REFERENCES shared_worlds(id) ON DELETE CASCADE,
		entry_id        TEXT NOT NULL,
		sequence        INTEGER NOT NULL,
		source_text     TEXT NOT NULL,
		target_state_id TEXT NOT NULL,
		label           TEXT NOT NULL,
		anchors         TEXT DEFAULT '[]',
		created_at      TEXT NOT NULL,
		CONSTRAINT uq_entry_sequence UNIQUE (snapshot_id, sequence)
	);

	CREATE INDEX IF NOT EXISTS idx_shared_worlds_world ON shared_worlds (world_id);
	CREATE INDEX IF NOT EXISTS idx_shared_worlds_created ON shared_worlds (created_at);
	CREATE INDEX IF NOT EXISTS idx_timeline_entries_snapshot ON timeline_entries (snapshot_id);
	CREATE INDEX IF NOT EXISTS idx_timeline_entries_target ON timeline_entries (target_state_id);

	CREATE VIRTUAL TABLE IF NOT EXISTS shared_worlds_fts USING fts5(
		world_name,
		summary,
		story,
		content=shared_worlds,
		content_rowid=id
	);

	CREATE TRIGGER IF NOT EXISTS shared_worlds_ai AFTER INSERT ON shared_worlds BEGIN
		INSERT INTO shared_worlds_fts(rowid, world_name, summary, story)
		VALUES (new.id, new.world_name, new.summary, new.story);
	END;

	CREATE TRIGGER IF NOT EXISTS shared_worlds_ad AFTER DELETE ON shared_worlds BEGIN
		INSERT INTO shared_worlds_fts(shared_worlds_fts, rowid, world_name, summary, story)
		VALUES ('delete', old.id, old.world_name, old.summary, old.story);
	END;
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

// splitStatements cuts a DDL script at lines ending in ";". Trigger bodies
// run until their closing END;.
func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder
	inTrigger := false

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		upper := strings.ToUpper(stripped)
		if strings.HasPrefix(upper, "CREATE TRIGGER") {
			inTrigger = true
		}
		current.WriteString(line)
		current.WriteString("\n")

		if inTrigger {
			if upper == "END;" {
				inTrigger = false
				statements = append(statements, current.String())
				current.Reset()
			}
			continue
		}
		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}

	return statements
}
