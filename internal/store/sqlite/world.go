package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"realmlog/internal/realm"
)

const tileColumns = `id, grid_row, grid_col, region, level, progress, COALESCE(feature, ''), locked`

func (c *Client) GetPlayer(ctx context.Context) (realm.Player, error) {
	return getPlayer(ctx, c.db)
}

func (c *Client) ListTiles(ctx context.Context) ([]realm.Tile, error) {
	return listTiles(ctx, c.db)
}

func (t *tx) GetPlayer(ctx context.Context) (realm.Player, error) {
	return getPlayer(ctx, t.q)
}

func (t *tx) ListTiles(ctx context.Context) ([]realm.Tile, error) {
	return listTiles(ctx, t.q)
}

func getPlayer(ctx context.Context, q queryer) (realm.Player, error) {
	var p realm.Player
	var target sql.NullString
	err := q.QueryRowContext(ctx, `
	SELECT xp, craft, lore, vigor, clarity, gold, target_tile_id
	FROM player WHERE id = ?`, realm.PlayerID,
	).Scan(&p.XP, &p.Craft, &p.Lore, &p.Vigor, &p.Clarity, &p.Gold, &target)
	if err == sql.ErrNoRows {
		return realm.Player{}, nil
	}
	if err != nil {
		return realm.Player{}, fmt.Errorf("get player: %w", err)
	}
	p.TargetTileID = target.String
	return p, nil
}

func listTiles(ctx context.Context, q queryer) ([]realm.Tile, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+tileColumns+` FROM tiles ORDER BY grid_row, grid_col, id`)
	if err != nil {
		return nil, fmt.Errorf("list tiles: %w", err)
	}
	defer rows.Close()

	var tiles []realm.Tile
	for rows.Next() {
		var t realm.Tile
		var region, feature string
		var locked int
		if err := rows.Scan(&t.ID, &t.Row, &t.Col, &region, &t.Level, &t.Progress, &feature, &locked); err != nil {
			return nil, fmt.Errorf("scanning tile: %w", err)
		}
		t.Region = realm.RegionID(region)
		t.Feature = realm.Feature(feature)
		t.Locked = locked != 0
		tiles = append(tiles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tiles: %w", err)
	}
	return tiles, nil
}

func (t *tx) SavePlayer(ctx context.Context, p realm.Player) error {
	_, err := t.q.ExecContext(ctx, `
	INSERT INTO player (id, xp, craft, lore, vigor, clarity, gold, target_tile_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		xp = excluded.xp,
		craft = excluded.craft,
		lore = excluded.lore,
		vigor = excluded.vigor,
		clarity = excluded.clarity,
		gold = excluded.gold,
		target_tile_id = excluded.target_tile_id`,
		realm.PlayerID, p.XP, p.Craft, p.Lore, p.Vigor, p.Clarity, p.Gold, nullString(p.TargetTileID),
	)
	if err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

func (t *tx) InsertTile(ctx context.Context, tile realm.Tile) error {
	_, err := t.q.ExecContext(ctx, `
	INSERT INTO tiles (id, grid_row, grid_col, region, level, progress, feature, locked)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tile.ID, tile.Row, tile.Col, string(tile.Region), tile.Level, tile.Progress,
		nullString(string(tile.Feature)), boolInt(tile.Locked),
	)
	if err != nil {
		return fmt.Errorf("insert tile %s: %w", tile.ID, err)
	}
	return nil
}

func (t *tx) UpdateTile(ctx context.Context, tile realm.Tile) error {
	res, err := t.q.ExecContext(ctx, `
	UPDATE tiles SET grid_row = ?, grid_col = ?, region = ?, level = ?, progress = ?, feature = ?, locked = ?
	WHERE id = ?`,
		tile.Row, tile.Col, string(tile.Region), tile.Level, tile.Progress,
		nullString(string(tile.Feature)), boolInt(tile.Locked), tile.ID,
	)
	if err != nil {
		return fmt.Errorf("update tile %s: %w", tile.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tile %s: %w", tile.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update tile %s: no such tile", tile.ID)
	}
	return nil
}

func (t *tx) DeleteTiles(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := t.q.ExecContext(ctx, `DELETE FROM tiles WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("delete tiles: %w", err)
	}
	return nil
}
