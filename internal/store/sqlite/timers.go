package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"realmlog/internal/realm"
)

func (c *Client) GetOpenTimer(ctx context.Context) (*realm.TimerSession, error) {
	var t realm.TimerSession
	var activity, mode, status, startedAt string
	var endsAt, stoppedAt, note, subtype sql.NullString
	err := c.db.QueryRowContext(ctx, `
	SELECT id, activity, mode, started_at, ends_at, stopped_at, status, note, subtype
	FROM timer_sessions
	WHERE status != ?
	ORDER BY started_at DESC
	LIMIT 1`, string(realm.TimerCommitted),
	).Scan(&t.ID, &activity, &mode, &startedAt, &endsAt, &stoppedAt, &status, &note, &subtype)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open timer: %w", err)
	}

	t.Activity = realm.Activity(activity)
	t.Mode = realm.TimerMode(mode)
	t.Status = realm.TimerStatus(status)
	t.Note = note.String
	t.Subtype = subtype.String
	if t.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if t.EndsAt, err = parseNullTime(endsAt); err != nil {
		return nil, err
	}
	if t.StoppedAt, err = parseNullTime(stoppedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) InsertTimer(ctx context.Context, t realm.TimerSession) error {
	return retryOp(c.retry, func() error {
		_, err := c.db.ExecContext(ctx, `
		INSERT INTO timer_sessions (id, activity, mode, started_at, ends_at, stopped_at, status, note, subtype)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, string(t.Activity), string(t.Mode), formatTime(t.StartedAt),
			nullTime(t.EndsAt), nullTime(t.StoppedAt), string(t.Status),
			nullString(t.Note), nullString(t.Subtype),
		)
		if err != nil {
			return fmt.Errorf("insert timer: %w", err)
		}
		return nil
	})
}

func (c *Client) UpdateTimer(ctx context.Context, t realm.TimerSession) error {
	return retryOp(c.retry, func() error {
		return updateTimer(ctx, c.db, t)
	})
}

func (t *tx) UpdateTimer(ctx context.Context, timer realm.TimerSession) error {
	return updateTimer(ctx, t.q, timer)
}

func updateTimer(ctx context.Context, q queryer, t realm.TimerSession) error {
	res, err := q.ExecContext(ctx, `
	UPDATE timer_sessions
	SET activity = ?, mode = ?, started_at = ?, ends_at = ?, stopped_at = ?, status = ?, note = ?, subtype = ?
	WHERE id = ?`,
		string(t.Activity), string(t.Mode), formatTime(t.StartedAt),
		nullTime(t.EndsAt), nullTime(t.StoppedAt), string(t.Status),
		nullString(t.Note), nullString(t.Subtype), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update timer: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update timer %s: no such timer", t.ID)
	}
	return nil
}

func (c *Client) DeleteTimer(ctx context.Context, id string) error {
	return retryOp(c.retry, func() error {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM timer_sessions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete timer: %w", err)
		}
		return nil
	})
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
