package postgres

import (
	"context"
	"fmt"

	"realmlog/internal/store"
)

// sessionDocument is the text indexed for note search. The expression must
// match the GIN index exactly for the planner to use it.
const sessionDocument = `to_tsvector('english', coalesce(activity, '') || ' ' || coalesce(subtype, '') || ' ' || coalesce(note, ''))`

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
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
	for _, col := range store.AddedColumns {
		ddl += fmt.Sprintf("\nALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s;", col.Table, col.Column, col.Definition)
	}
	ddl += `
CREATE INDEX IF NOT EXISTS idx_tiles_position ON tiles (grid_row, grid_col);
CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions (created_at);
CREATE INDEX IF NOT EXISTS idx_sessions_activity ON sessions (activity);
CREATE INDEX IF NOT EXISTS idx_sessions_search ON sessions USING GIN ((` + sessionDocument + `));
CREATE INDEX IF NOT EXISTS idx_timer_sessions_status ON timer_sessions (status);

INSERT INTO player (id) VALUES (1) ON CONFLICT (id) DO NOTHING;
`

	// A multi-statement Exec without arguments runs as one implicit
	// transaction.
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
