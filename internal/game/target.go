package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"realmlog/internal/realm"
	"realmlog/internal/store"
)

// SetTargetTile pins the tile future session minutes prefer. An empty id
// clears the pin.
func (s *Store) SetTargetTile(ctx context.Context, tileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return ErrNotInitialized
	}

	cur := s.state
	tileID = strings.TrimSpace(tileID)
	if tileID != "" {
		t, ok := cur.Tile(tileID)
		if !ok {
			return reject(ReasonTileNotFound, "Tile %s does not exist.", tileID)
		}
		if realm.IsHardLocked(t) {
			return reject(ReasonNotInvestable, "%s", cur.Index().Reason(t))
		}
	}
	if cur.Player.TargetTileID == tileID {
		return nil
	}

	player := cur.Player
	player.TargetTileID = tileID
	err := s.db.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.SavePlayer(ctx, player)
	})
	if err != nil {
		return fmt.Errorf("setting target: %w", err)
	}

	s.state = State{Player: player, Tiles: cur.Tiles}
	s.log.Info("target set", slog.String("tile", tileID))
	return nil
}
