package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"realmlog/internal/realm"
	"realmlog/internal/store"
)

const sessionColumns = `id, created_at, activity, minutes, note, subtype, amount, tile_id`

func (t *tx) InsertSession(ctx context.Context, s realm.Session) error {
	_, err := t.q.Exec(ctx, `
INSERT INTO sessions (id, created_at, activity, minutes, note, subtype, amount, tile_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, formatTime(s.CreatedAt), string(s.Activity), s.Minutes,
		optional(s.Note), optional(s.Subtype), s.Amount, optional(s.TileID),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (t *tx) RenameSessionActivity(ctx context.Context, from, to string) (int64, error) {
	tag, err := t.q.Exec(ctx, `UPDATE sessions SET activity = $1 WHERE activity = $2`, to, from)
	if err != nil {
		return 0, fmt.Errorf("rename activity %q: %w", from, err)
	}
	return tag.RowsAffected(), nil
}

func (c *Client) ListSessions(ctx context.Context, filter store.SessionFilter) ([]realm.Session, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	since := ""
	if !filter.Since.IsZero() {
		since = formatTime(filter.Since)
	}

	rows, err := c.pool.Query(ctx, `
SELECT `+sessionColumns+`
FROM sessions
WHERE ($1 = '' OR activity = $1)
  AND ($2 = '' OR created_at >= $2)
ORDER BY created_at DESC, id DESC
LIMIT $3`,
		filter.Activity, since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

func (c *Client) SearchSessions(ctx context.Context, query string, limit int) ([]realm.Session, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := c.pool.Query(ctx, `
SELECT `+sessionColumns+`
FROM sessions
WHERE `+sessionDocument+` @@ websearch_to_tsquery('english', $1)
ORDER BY ts_rank(`+sessionDocument+`, websearch_to_tsquery('english', $1)) DESC, created_at DESC
LIMIT $2`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

func scanSessions(rows pgx.Rows) ([]realm.Session, error) {
	sessions := []realm.Session{}
	for rows.Next() {
		var s realm.Session
		var createdAt, activity string
		var note, subtype, tileID *string
		if err := rows.Scan(&s.ID, &createdAt, &activity, &s.Minutes, &note, &subtype, &s.Amount, &tileID); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		ts, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		s.CreatedAt = ts
		s.Activity = realm.Activity(activity)
		s.Note = deref(note)
		s.Subtype = deref(subtype)
		s.TileID = deref(tileID)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}
