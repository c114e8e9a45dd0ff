package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"realmlog/internal/realm"
	"realmlog/internal/store"
)

type SpendResult struct {
	Tile           realm.Tile   `json:"tile"`
	Player         realm.Player `json:"player"`
	NewlyConquered bool         `json:"newly_conquered"`
	UnlockedTiles  []realm.Tile `json:"unlocked_tiles,omitempty"`
}

// SpendResourceOnTile moves minutes from a resource pool into a tile.
// Checks run in a fixed order and the first failure is returned as a
// *Rejection with nothing written.
func (s *Store) SpendResourceOnTile(ctx context.Context, tileID string, resource string, minutes int) (SpendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return SpendResult{}, ErrNotInitialized
	}

	if minutes <= 0 {
		return SpendResult{}, reject(ReasonInvalidAmount, "Spend at least 1 minute.")
	}
	key, ok := realm.ParseResource(resource)
	if !ok {
		return SpendResult{}, reject(ReasonInvalidResource, "Unknown resource %q.", resource)
	}
	activity, ok := realm.ActivityForResource(key)
	if !ok {
		return SpendResult{}, reject(ReasonInvalidResource, "%s cannot be invested in tiles.", key)
	}

	cur := s.state
	idx := cur.Index()
	tileID = strings.TrimSpace(tileID)

	if have := cur.Player.Pool(key); have < minutes {
		return SpendResult{}, reject(ReasonInsufficientResources, "Not enough %s: have %d, need %d.", key, have, minutes)
	}
	before, ok := idx.Tile(tileID)
	if !ok {
		return SpendResult{}, reject(ReasonTileNotFound, "Tile %s does not exist.", tileID)
	}
	if !idx.CanInvest(before) {
		return SpendResult{}, reject(ReasonNotInvestable, "%s", idx.Reason(before))
	}
	if before.Level >= realm.MaxLevel {
		return SpendResult{}, reject(ReasonMaxLevel, "Tile %s is already at max level.", before.ID)
	}
	if !before.Region.Allows(activity) {
		return SpendResult{}, reject(ReasonRegionMismatch, "%s does not accept %s (%s).", regionName(before.Region), key, activity)
	}

	after := realm.ApplyMinutes(before, minutes)
	player := cur.Player.WithDelta(key, -minutes)
	result := SpendResult{Tile: after, Player: player}
	changed := []realm.Tile{after}

	if before.Level == 0 && after.Level >= 1 {
		result.NewlyConquered = true
		if after.Feature == realm.FeatureGate {
			result.UnlockedTiles = realm.ApplyGateUnlock(cur.Tiles)
			changed = append(changed, result.UnlockedTiles...)
		}
	}

	err := s.db.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, t := range changed {
			if err := tx.UpdateTile(ctx, t); err != nil {
				return err
			}
		}
		return tx.SavePlayer(ctx, player)
	})
	if err != nil {
		return SpendResult{}, fmt.Errorf("spending %s on %s: %w", key, before.ID, err)
	}

	s.state = State{Player: player, Tiles: replaceTiles(cur.Tiles, changed...)}

	s.log.Info("resource spent",
		slog.String("tile", after.ID),
		slog.String("resource", string(key)),
		slog.Int("minutes", minutes),
		slog.Int("level", after.Level),
		slog.Bool("conquered", result.NewlyConquered),
		slog.Int("unlocked", len(result.UnlockedTiles)),
	)
	return result, nil
}
