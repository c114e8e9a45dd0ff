package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"realmlog/internal/realm"
	"realmlog/internal/store"
)

const sessionColumns = `s.id, s.created_at, s.activity, s.minutes, s.note, s.subtype, s.amount, s.tile_id`

func (t *tx) InsertSession(ctx context.Context, s realm.Session) error {
	var amount sql.NullInt64
	if s.Amount != nil {
		amount = sql.NullInt64{Int64: int64(*s.Amount), Valid: true}
	}
	_, err := t.q.ExecContext(ctx, `
	INSERT INTO sessions (id, created_at, activity, minutes, note, subtype, amount, tile_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, formatTime(s.CreatedAt), string(s.Activity), s.Minutes,
		nullString(s.Note), nullString(s.Subtype), amount, nullString(s.TileID),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (t *tx) RenameSessionActivity(ctx context.Context, from, to string) (int64, error) {
	res, err := t.q.ExecContext(ctx, `UPDATE sessions SET activity = ? WHERE activity = ?`, to, from)
	if err != nil {
		return 0, fmt.Errorf("rename activity %q: %w", from, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rename activity %q: %w", from, err)
	}
	return n, nil
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

	rows, err := c.db.QueryContext(ctx, `
	SELECT `+sessionColumns+`
	FROM sessions s
	WHERE (? = '' OR s.activity = ?)
	  AND (? = '' OR s.created_at >= ?)
	ORDER BY s.created_at DESC, s.id DESC
	LIMIT ?`,
		filter.Activity, filter.Activity, since, since, limit,
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

	rows, err := c.db.QueryContext(ctx, `
	SELECT `+sessionColumns+`
	FROM sessions_fts
	JOIN sessions s ON sessions_fts.rowid = s.rowid
	WHERE sessions_fts MATCH ?
	ORDER BY bm25(sessions_fts, 2.0, 2.0, 1.0), s.created_at DESC
	LIMIT ?`,
		convertWebsearchToFTS5(query), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

func scanSessions(rows *sql.Rows) ([]realm.Session, error) {
	sessions := []realm.Session{}
	for rows.Next() {
		var s realm.Session
		var createdAt, activity string
		var note, subtype, tileID sql.NullString
		var amount sql.NullInt64
		if err := rows.Scan(&s.ID, &createdAt, &activity, &s.Minutes, &note, &subtype, &amount, &tileID); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		ts, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		s.CreatedAt = ts
		s.Activity = realm.Activity(activity)
		s.Note = note.String
		s.Subtype = subtype.String
		s.TileID = tileID.String
		if amount.Valid {
			v := int(amount.Int64)
			s.Amount = &v
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}
