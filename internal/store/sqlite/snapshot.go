package sqlite

import (
	"context"
	"fmt"
	"strings"

	"realmlog/internal/realm"
	"realmlog/internal/store"
)

func (c *Client) ExportTables(ctx context.Context) (map[string][]map[string]any, error) {
	out := make(map[string][]map[string]any, len(store.Tables))
	for _, table := range store.Tables {
		cols := strings.Join(store.Columns[table], ", ")
		rows, err := queryMaps(ctx, c.db, fmt.Sprintf("SELECT %s FROM %s ORDER BY id", cols, table))
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", table, err)
		}
		out[table] = rows
	}
	return out, nil
}

// ImportTables replaces the content of every table named in tables. Tables
// not present are left alone. The player row is recreated when an import
// leaves the table empty.
func (c *Client) ImportTables(ctx context.Context, tables map[string][]map[string]any) error {
	if err := store.ValidateImport(tables); err != nil {
		return err
	}

	return retryOp(c.retry, func() error {
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		for _, table := range store.Tables {
			rows, ok := tables[table]
			if !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
			for _, row := range rows {
				cols := store.RowColumns(table, row)
				if len(cols) == 0 {
					continue
				}
				args := make([]any, len(cols))
				for i, col := range cols {
					args[i] = row[col]
				}
				placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
				stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)
				if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
					return fmt.Errorf("importing %s: %w", table, err)
				}
			}
		}

		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO player (id) VALUES (?)`, realm.PlayerID); err != nil {
			return fmt.Errorf("creating player row: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing import: %w", err)
		}
		return nil
	})
}

func (c *Client) ResetSessions(ctx context.Context) error {
	return c.exec(ctx, "reset sessions", `DELETE FROM sessions`)
}

func (c *Client) ResetTiles(ctx context.Context) error {
	return c.exec(ctx, "reset tiles", `UPDATE tiles SET level = 0, progress = 0`)
}

func (c *Client) ResetPlayer(ctx context.Context) error {
	return c.exec(ctx, "reset player", `
	UPDATE player
	SET xp = 0, craft = 0, lore = 0, vigor = 0, clarity = 0, gold = 0, target_tile_id = NULL`)
}

func (c *Client) exec(ctx context.Context, what, query string, args ...any) error {
	return retryOp(c.retry, func() error {
		if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%s: %w", what, err)
		}
		return nil
	})
}
