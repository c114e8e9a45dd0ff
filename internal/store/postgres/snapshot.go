package postgres

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
		rows, err := queryMaps(ctx, c.pool, fmt.Sprintf("SELECT %s FROM %s ORDER BY id", cols, table))
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", table, err)
		}
		out[table] = rows
	}
	return out, nil
}

func (c *Client) ImportTables(ctx context.Context, tables map[string][]map[string]any) error {
	if err := store.ValidateImport(tables); err != nil {
		return err
	}

	pgTx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer pgTx.Rollback(ctx)

	for _, table := range store.Tables {
		rows, ok := tables[table]
		if !ok {
			continue
		}
		if _, err := pgTx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
		for _, row := range rows {
			cols := store.RowColumns(table, row)
			if len(cols) == 0 {
				continue
			}
			args := make([]any, len(cols))
			placeholders := make([]string, len(cols))
			for i, col := range cols {
				args[i] = row[col]
				placeholders[i] = fmt.Sprintf("$%d", i+1)
			}
			stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
				table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
			if _, err := pgTx.Exec(ctx, stmt, args...); err != nil {
				return fmt.Errorf("importing %s: %w", table, err)
			}
		}
	}

	if _, err := pgTx.Exec(ctx, `INSERT INTO player (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, realm.PlayerID); err != nil {
		return fmt.Errorf("creating player row: %w", err)
	}

	if err := pgTx.Commit(ctx); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

func (c *Client) ResetSessions(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, `TRUNCATE sessions`); err != nil {
		return fmt.Errorf("reset sessions: %w", err)
	}
	return nil
}

func (c *Client) ResetTiles(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, `UPDATE tiles SET level = 0, progress = 0`); err != nil {
		return fmt.Errorf("reset tiles: %w", err)
	}
	return nil
}

func (c *Client) ResetPlayer(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, `
UPDATE player
SET xp = 0, craft = 0, lore = 0, vigor = 0, clarity = 0, gold = 0, target_tile_id = NULL`)
	if err != nil {
		return fmt.Errorf("reset player: %w", err)
	}
	return nil
}
