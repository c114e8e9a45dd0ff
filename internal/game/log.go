package game

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"realmlog/internal/realm"
	"realmlog/internal/store"
)

type LogInput struct {
	Activity string
	Minutes  float64
	Amount   int
	Subtype  string
	Note     string
	// TileID forces the minutes of a core activity into this tile.
	TileID string
	// Timer is saved in the same transaction as the session.
	Timer *realm.TimerSession
}

type LogResult struct {
	Session        realm.Session `json:"session"`
	Reward         realm.Reward  `json:"reward"`
	Invested       *realm.Tile   `json:"invested,omitempty"`
	NewlyConquered bool          `json:"newly_conquered"`
	UnlockedTiles  []realm.Tile  `json:"unlocked_tiles,omitempty"`
}

// LogSession records a session and grants its reward in one transaction.
// Core minutes go to the matching pool, or into a tile when the store runs
// in direct mode or the input names a tile.
func (s *Store) LogSession(ctx context.Context, in LogInput) (LogResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return LogResult{}, ErrNotInitialized
	}

	activity := realm.NormalizeActivity(in.Activity)
	if activity == "" {
		return LogResult{}, reject(ReasonUnknownActivity, "An activity is required.")
	}

	minutes := 0
	if in.Minutes > 0 {
		minutes = int(math.Floor(in.Minutes))
	}
	var amount *int
	switch activity {
	case realm.ActivityIncome:
		if in.Amount < 1 {
			return LogResult{}, reject(ReasonInvalidAmount, "Income needs an amount of at least 1.")
		}
		a := in.Amount
		amount = &a
	default:
		if minutes < 1 {
			return LogResult{}, reject(ReasonInvalidMinutes, "Log at least 1 minute.")
		}
	}

	cur := s.state
	idx := cur.Index()
	reward := realm.RewardFor(activity, minutes, in.Amount)

	var target *realm.Tile
	tileID := strings.TrimSpace(in.TileID)
	if activity.IsCore() && (tileID != "" || s.mode == InvestDirect) {
		t, err := s.chooseInvestTarget(cur, idx, activity, tileID)
		if err != nil {
			return LogResult{}, err
		}
		target = t
	}

	id, err := s.newID()
	if err != nil {
		return LogResult{}, err
	}
	session := realm.Session{
		ID:        id,
		CreatedAt: s.now().UTC(),
		Activity:  activity,
		Minutes:   minutes,
		Note:      strings.TrimSpace(in.Note),
		Subtype:   strings.TrimSpace(in.Subtype),
		Amount:    amount,
	}

	player := cur.Player
	player.XP += reward.XP
	result := LogResult{Reward: reward}
	var changed []realm.Tile

	if target != nil {
		before := *target
		after := realm.ApplyMinutes(before, minutes)
		session.TileID = after.ID
		result.Invested = &after
		changed = append(changed, after)

		if before.Level == 0 && after.Level >= 1 {
			result.NewlyConquered = true
			if after.Feature == realm.FeatureGate {
				result.UnlockedTiles = realm.ApplyGateUnlock(cur.Tiles)
				changed = append(changed, result.UnlockedTiles...)
			}
		}
	} else if !reward.Empty() {
		player = player.WithDelta(reward.Resource, reward.Amount)
	}
	result.Session = session

	err = s.db.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertSession(ctx, session); err != nil {
			return err
		}
		for _, t := range changed {
			if err := tx.UpdateTile(ctx, t); err != nil {
				return err
			}
		}
		if err := tx.SavePlayer(ctx, player); err != nil {
			return err
		}
		if in.Timer != nil {
			return tx.UpdateTimer(ctx, *in.Timer)
		}
		return nil
	})
	if err != nil {
		return LogResult{}, fmt.Errorf("logging session: %w", err)
	}

	s.state = State{Player: player, Tiles: replaceTiles(cur.Tiles, changed...)}

	attrs := []any{
		slog.String("session", session.ID),
		slog.String("activity", string(activity)),
		slog.Int("minutes", minutes),
	}
	if result.Invested != nil {
		attrs = append(attrs, slog.String("tile", result.Invested.ID), slog.Int("level", result.Invested.Level))
	}
	if len(result.UnlockedTiles) > 0 {
		attrs = append(attrs, slog.Int("unlocked", len(result.UnlockedTiles)))
	}
	s.log.Info("session logged", attrs...)
	return result, nil
}

// chooseInvestTarget resolves the tile a core session invests into: the
// explicit tile, else the pinned target, else the auto-pick. An explicit tile
// must be valid; an unusable pin falls through to the auto-pick. It returns
// nil when no tile qualifies, and the minutes then go to the pool.
func (s *Store) chooseInvestTarget(cur State, idx *realm.Index, activity realm.Activity, tileID string) (*realm.Tile, error) {
	if tileID != "" {
		t, ok := idx.Tile(tileID)
		if !ok {
			return nil, reject(ReasonTileNotFound, "Tile %s does not exist.", tileID)
		}
		if !idx.CanInvest(t) {
			return nil, reject(ReasonNotInvestable, "%s", idx.Reason(t))
		}
		if t.Level >= realm.MaxLevel {
			return nil, reject(ReasonMaxLevel, "Tile %s is already at max level.", t.ID)
		}
		if !t.Region.Allows(activity) {
			return nil, reject(ReasonRegionMismatch, "%s does not accept %s.", regionName(t.Region), activity)
		}
		return &t, nil
	}

	if pinned := cur.Player.TargetTileID; pinned != "" {
		if t, ok := idx.Tile(pinned); ok && idx.EligibleFor(t, activity) {
			return &t, nil
		}
	}

	if t, ok := idx.PickInvestTarget(cur.Tiles, activity); ok {
		return &t, nil
	}
	return nil, nil
}

func regionName(id realm.RegionID) string {
	if r, ok := realm.LookupRegion(id); ok {
		return r.Name
	}
	return string(id)
}
