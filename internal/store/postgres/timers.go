package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"realmlog/internal/realm"
)

func (c *Client) GetOpenTimer(ctx context.Context) (*realm.TimerSession, error) {
	var t realm.TimerSession
	var activity, mode, status, startedAt string
	var endsAt, stoppedAt, note, subtype *string
	err := c.pool.QueryRow(ctx, `
SELECT id, activity, mode, started_at, ends_at, stopped_at, status, note, subtype
FROM timer_sessions
WHERE status <> $1
ORDER BY started_at DESC
LIMIT 1`, string(realm.TimerCommitted),
	).Scan(&t.ID, &activity, &mode, &startedAt, &endsAt, &stoppedAt, &status, &note, &subtype)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open timer: %w", err)
	}

	t.Activity = realm.Activity(activity)
	t.Mode = realm.TimerMode(mode)
	t.Status = realm.TimerStatus(status)
	t.Note = deref(note)
	t.Subtype = deref(subtype)
	if t.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if t.EndsAt, err = parseOptionalTime(endsAt); err != nil {
		return nil, err
	}
	if t.StoppedAt, err = parseOptionalTime(stoppedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) InsertTimer(ctx context.Context, t realm.TimerSession) error {
	_, err := c.pool.Exec(ctx, `
INSERT INTO timer_sessions (id, activity, mode, started_at, ends_at, stopped_at, status, note, subtype)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, string(t.Activity), string(t.Mode), formatTime(t.StartedAt),
		optionalTime(t.EndsAt), optionalTime(t.StoppedAt), string(t.Status),
		optional(t.Note), optional(t.Subtype),
	)
	if err != nil {
		return fmt.Errorf("insert timer: %w", err)
	}
	return nil
}

func (c *Client) UpdateTimer(ctx context.Context, t realm.TimerSession) error {
	return updateTimer(ctx, c.pool, t)
}

func (t *tx) UpdateTimer(ctx context.Context, timer realm.TimerSession) error {
	return updateTimer(ctx, t.q, timer)
}

func updateTimer(ctx context.Context, q queryer, t realm.TimerSession) error {
	tag, err := q.Exec(ctx, `
UPDATE timer_sessions
SET activity = $1, mode = $2, started_at = $3, ends_at = $4, stopped_at = $5, status = $6, note = $7, subtype = $8
WHERE id = $9`,
		string(t.Activity), string(t.Mode), formatTime(t.StartedAt),
		optionalTime(t.EndsAt), optionalTime(t.StoppedAt), string(t.Status),
		optional(t.Note), optional(t.Subtype), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update timer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update timer %s: no such timer", t.ID)
	}
	return nil
}

func (c *Client) DeleteTimer(ctx context.Context, id string) error {
	if _, err := c.pool.Exec(ctx, `DELETE FROM timer_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete timer: %w", err)
	}
	return nil
}

func optionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
