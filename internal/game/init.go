package game

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"realmlog/internal/realm"
	"realmlog/internal/store"
)

// InitReport summarises the repairs Init made. Every field is zero on a
// database that is already consistent.
type InitReport struct {
	Inserted        int    `json:"inserted"`
	Updated         int    `json:"updated"`
	Deleted         int    `json:"deleted"`
	Seeded          string `json:"seeded,omitempty"`
	RenamedSessions int64  `json:"renamed_sessions"`
	TargetCleared   bool   `json:"target_cleared"`
}

// Init brings storage up to date and loads the committed state. It creates
// or migrates the schema, remaps legacy activity names, syncs tiles against
// the layout, seeds a start tile for an unconquered world and drops an
// invalid target pin. Running it again on the same data changes nothing.
func (s *Store) Init(ctx context.Context) (InitReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.EnsureSchema(ctx); err != nil {
		return InitReport{}, fmt.Errorf("ensuring schema: %w", err)
	}

	var report InitReport
	var next State
	err := s.db.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		report = InitReport{}

		renamed, err := remapLegacyActivities(ctx, tx)
		if err != nil {
			return err
		}
		report.RenamedSessions = renamed

		existing, err := tx.ListTiles(ctx)
		if err != nil {
			return err
		}
		plan := realm.PlanSync(existing, s.layout)
		if err := applySyncPlan(ctx, tx, plan); err != nil {
			return err
		}
		report.Inserted, report.Updated, report.Deleted = len(plan.Insert), len(plan.Update), len(plan.Delete)
		tiles := realm.ApplySyncPlan(existing, plan)

		if seed, ok := realm.PlanSeed(tiles, s.layout.StartID); ok {
			if err := tx.UpdateTile(ctx, seed); err != nil {
				return err
			}
			tiles = replaceTiles(tiles, seed)
			report.Seeded = seed.ID
		}

		player, err := tx.GetPlayer(ctx)
		if err != nil {
			return err
		}
		repaired := repairPlayer(player, realm.NewIndex(tiles))
		if repaired != player {
			report.TargetCleared = repaired.TargetTileID != player.TargetTileID
			if err := tx.SavePlayer(ctx, repaired); err != nil {
				return err
			}
		}

		next = State{Player: repaired, Tiles: tiles}
		return nil
	})
	if err != nil {
		return InitReport{}, fmt.Errorf("initializing realm: %w", err)
	}

	s.state = next
	s.ready = true

	if report != (InitReport{}) {
		s.log.Info("realm repaired",
			slog.Int("inserted", report.Inserted),
			slog.Int("updated", report.Updated),
			slog.Int("deleted", report.Deleted),
			slog.String("seeded", report.Seeded),
			slog.Int64("renamed_sessions", report.RenamedSessions),
			slog.Bool("target_cleared", report.TargetCleared),
		)
	} else {
		s.log.Debug("realm consistent", slog.Int("tiles", len(next.Tiles)))
	}
	return report, nil
}

func remapLegacyActivities(ctx context.Context, tx store.Tx) (int64, error) {
	aliases := realm.LegacyActivities()
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	var total int64
	for _, name := range names {
		n, err := tx.RenameSessionActivity(ctx, name, string(aliases[name]))
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func applySyncPlan(ctx context.Context, tx store.Tx, plan realm.SyncPlan) error {
	if err := tx.DeleteTiles(ctx, plan.Delete); err != nil {
		return err
	}
	for _, t := range plan.Insert {
		if err := tx.InsertTile(ctx, t); err != nil {
			return err
		}
	}
	for _, t := range plan.Update {
		if err := tx.UpdateTile(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// repairPlayer clamps negative pools and drops a target that no longer
// points at an investable-in-principle tile.
func repairPlayer(p realm.Player, idx *realm.Index) realm.Player {
	for _, key := range []realm.ResourceKey{
		realm.ResourceCraft, realm.ResourceLore, realm.ResourceVigor, realm.ResourceClarity, realm.ResourceGold,
	} {
		if p.Pool(key) < 0 {
			p = p.WithDelta(key, 0)
		}
	}
	if p.XP < 0 {
		p.XP = 0
	}
	if p.TargetTileID != "" {
		t, ok := idx.Tile(p.TargetTileID)
		if !ok || realm.IsHardLocked(t) {
			p.TargetTileID = ""
		}
	}
	return p
}
