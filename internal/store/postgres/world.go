package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"realmlog/internal/realm"
)

func (c *Client) GetPlayer(ctx context.Context) (realm.Player, error) {
	return getPlayer(ctx, c.pool)
}

func (c *Client) ListTiles(ctx context.Context) ([]realm.Tile, error) {
	return listTiles(ctx, c.pool)
}

func (t *tx) GetPlayer(ctx context.Context) (realm.Player, error) {
	return getPlayer(ctx, t.q)
}

func (t *tx) ListTiles(ctx context.Context) ([]realm.Tile, error) {
	return listTiles(ctx, t.q)
}

func getPlayer(ctx context.Context, q queryer) (realm.Player, error) {
	var p realm.Player
	var target *string
	err := q.QueryRow(ctx, `
SELECT xp, craft, lore, vigor, clarity, gold, target_tile_id
FROM player WHERE id = $1`, realm.PlayerID,
	).Scan(&p.XP, &p.Craft, &p.Lore, &p.Vigor, &p.Clarity, &p.Gold, &target)
	if errors.Is(err, pgx.ErrNoRows) {
		return realm.Player{}, nil
	}
	if err != nil {
		return realm.Player{}, fmt.Errorf("get player: %w", err)
	}
	p.TargetTileID = deref(target)
	return p, nil
}

func listTiles(ctx context.Context, q queryer) ([]realm.Tile, error) {
	rows, err := q.Query(ctx, `
SELECT id, grid_row, grid_col, region, level, progress, COALESCE(feature, ''), locked
FROM tiles ORDER BY grid_row, grid_col, id`)
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
	_, err := t.q.Exec(ctx, `
INSERT INTO player (id, xp, craft, lore, vigor, clarity, gold, target_tile_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
    xp = EXCLUDED.xp,
    craft = EXCLUDED.craft,
    lore = EXCLUDED.lore,
    vigor = EXCLUDED.vigor,
    clarity = EXCLUDED.clarity,
    gold = EXCLUDED.gold,
    target_tile_id = EXCLUDED.target_tile_id`,
		realm.PlayerID, p.XP, p.Craft, p.Lore, p.Vigor, p.Clarity, p.Gold, optional(p.TargetTileID),
	)
	if err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

func (t *tx) InsertTile(ctx context.Context, tile realm.Tile) error {
	_, err := t.q.Exec(ctx, `
INSERT INTO tiles (id, grid_row, grid_col, region, level, progress, feature, locked)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tile.ID, tile.Row, tile.Col, string(tile.Region), tile.Level, tile.Progress,
		optional(string(tile.Feature)), boolInt(tile.Locked),
	)
	if err != nil {
		return fmt.Errorf("insert tile %s: %w", tile.ID, err)
	}
	return nil
}

func (t *tx) UpdateTile(ctx context.Context, tile realm.Tile) error {
	tag, err := t.q.Exec(ctx, `
UPDATE tiles SET grid_row = $1, grid_col = $2, region = $3, level = $4, progress = $5, feature = $6, locked = $7
WHERE id = $8`,
		tile.Row, tile.Col, string(tile.Region), tile.Level, tile.Progress,
		optional(string(tile.Feature)), boolInt(tile.Locked), tile.ID,
	)
	if err != nil {
		return fmt.Errorf("update tile %s: %w", tile.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update tile %s: no such tile", tile.ID)
	}
	return nil
}

func (t *tx) DeleteTiles(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := t.q.Exec(ctx, `DELETE FROM tiles WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("delete tiles: %w", err)
	}
	return nil
}
