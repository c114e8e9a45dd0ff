package sqlite

import (
	"context"
	"fmt"
	"strings"

	"realmlog/internal/store"
)

const tablesDDL = `
CREATE TABLE IF NOT EXISTS player (
	id             INTEGER PRIMARY KEY CHECK (id = 1),
	xp             INTEGER NOT NULL DEFAULT 0,
	craft          INTEGER NOT NULL DEFAULT 0,
	lore           INTEGER NOT NULL DEFAULT 0,
	vigor          INTEGER NOT NULL DEFAULT 0,
	clarity        INTEGER NOT NULL DEFAULT 0,
	gold           INTEGER NOT NULL DEFAULT 0,
	target_tile_id TEXT
);

CREATE TABLE IF NOT EXISTS tiles (
	id       TEXT PRIMARY KEY,
	grid_row INTEGER NOT NULL,
	grid_col INTEGER NOT NULL,
	region   TEXT NOT NULL,
	level    INTEGER NOT NULL DEFAULT 0,
	progress INTEGER NOT NULL DEFAULT 0,
	feature  TEXT,
	locked   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	activity   TEXT NOT NULL,
	minutes    INTEGER NOT NULL DEFAULT 0,
	note       TEXT,
	subtype    TEXT,
	amount     INTEGER,
	tile_id    TEXT
);

CREATE TABLE IF NOT EXISTS timer_sessions (
	id         TEXT PRIMARY KEY,
	activity   TEXT NOT NULL,
	mode       TEXT NOT NULL,
	started_at TEXT NOT NULL,
	ends_at    TEXT,
	stopped_at TEXT,
	status     TEXT NOT NULL,
	note       TEXT,
	subtype    TEXT
);
`

const indexDDL = `
CREATE INDEX IF NOT EXISTS idx_tiles_position ON tiles (grid_row, grid_col);
CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions (created_at);
CREATE INDEX IF NOT EXISTS idx_sessions_activity ON sessions (activity);
CREATE INDEX IF NOT EXISTS idx_timer_sessions_status ON timer_sessions (status);

CREATE VIRTUAL TABLE IF NOT EXISTS sessions_fts USING fts5(
	activity,
	subtype,
	note,
	content=sessions
);

CREATE TRIGGER IF NOT EXISTS sessions_ai AFTER INSERT ON sessions BEGIN
	INSERT INTO sessions_fts(rowid, activity, subtype, note)
	VALUES (new.rowid, new.activity, new.subtype, new.note);
END;

CREATE TRIGGER IF NOT EXISTS sessions_ad AFTER DELETE ON sessions BEGIN
	INSERT INTO sessions_fts(sessions_fts, rowid, activity, subtype, note)
	VALUES ('delete', old.rowid, old.activity, old.subtype, old.note);
END;

CREATE TRIGGER IF NOT EXISTS sessions_au AFTER UPDATE ON sessions BEGIN
	INSERT INTO sessions_fts(sessions_fts, rowid, activity, subtype, note)
	VALUES ('delete', old.rowid, old.activity, old.subtype, old.note);
	INSERT INTO sessions_fts(rowid, activity, subtype, note)
	VALUES (new.rowid, new.activity, new.subtype, new.note);
END;
`

// EnsureSchema creates missing tables, adds columns introduced after the
// first release and makes sure the player row exists. It is safe to run on
// every start.
func (c *Client) EnsureSchema(ctx context.Context) error {
	return retryOp(c.retry, func() error {
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		if err := execStatements(ctx, tx, tablesDDL); err != nil {
			return err
		}

		for _, col := range store.AddedColumns {
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", col.Table, col.Column, col.Definition)
			if _, err := tx.ExecContext(ctx, stmt); err != nil && !isDuplicateColumn(err) {
				return fmt.Errorf("adding column %s.%s: %w", col.Table, col.Column, err)
			}
		}

		var ftsExists int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'sessions_fts'`,
		).Scan(&ftsExists)
		if err != nil {
			return fmt.Errorf("checking search index: %w", err)
		}

		if err := execStatements(ctx, tx, indexDDL); err != nil {
			return err
		}

		if ftsExists == 0 {
			if _, err := tx.ExecContext(ctx, `INSERT INTO sessions_fts(sessions_fts) VALUES ('rebuild')`); err != nil {
				return fmt.Errorf("building search index: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO player (id) VALUES (1)`); err != nil {
			return fmt.Errorf("creating player row: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing schema transaction: %w", err)
		}
		return nil
	})
}

func execStatements(ctx context.Context, q queryer, ddl string) error {
	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	return strings.Contains(err.Error(), "duplicate column name")
}

// splitStatements splits DDL on trailing semicolons, keeping trigger bodies
// together until their closing END;.
func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder
	inTrigger := false

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(stripped), "CREATE TRIGGER") {
			inTrigger = true
		}
		current.WriteString(line)
		current.WriteString("\n")

		if !strings.HasSuffix(stripped, ";") {
			continue
		}
		if inTrigger && !strings.EqualFold(stripped, "END;") {
			continue
		}
		inTrigger = false
		statements = append(statements, current.String())
		current.Reset()
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}

	return statements
}
