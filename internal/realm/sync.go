package realm

import "sort"

type SyncPlan struct {
	Insert []Tile
	Update []Tile
	Delete []string
}

func (p SyncPlan) Empty() bool {
	return len(p.Insert) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// PlanSync reconciles persisted tiles with the layout. Progress is never
// reset and a sealed tile is never unsealed here: the only way out of a seal
// is ApplyGateUnlock. Once a gate is conquered the gated region's layout
// default no longer seals it, so a later sync does not undo the gate.
func PlanSync(existing []Tile, layout *Layout) SyncPlan {
	var plan SyncPlan
	gateOpen := GateOpen(existing)

	byPos := make(map[position]Tile, len(existing))
	for _, t := range sortedTiles(existing) {
		pos := position{t.Row, t.Col}
		kept, dup := byPos[pos]
		if !dup {
			byPos[pos] = t
			continue
		}
		// Duplicate cell from legacy data: the canonical id wins.
		if t.ID == TileID(t.Row, t.Col) {
			plan.Delete = append(plan.Delete, kept.ID)
			byPos[pos] = t
			continue
		}
		plan.Delete = append(plan.Delete, t.ID)
	}

	inLayout := make(map[position]struct{}, len(layout.Cells))
	for _, cell := range layout.Cells {
		pos := position{cell.Row, cell.Col}
		inLayout[pos] = struct{}{}

		layoutLocked := cell.Locked
		if gateOpen && cell.Region == GatedRegion && cell.Feature != FeatureVoid {
			layoutLocked = false
		}

		current, ok := byPos[pos]
		if !ok {
			plan.Insert = append(plan.Insert, Tile{
				ID:      TileID(cell.Row, cell.Col),
				Row:     cell.Row,
				Col:     cell.Col,
				Region:  cell.Region,
				Feature: cell.Feature,
				Locked:  layoutLocked,
			})
			continue
		}

		next := current
		next.Region = cell.Region
		next.Feature = cell.Feature
		next.Locked = current.Locked || layoutLocked
		if next.Progress < 0 {
			next.Progress = 0
		}
		next.Level = LevelFromProgress(next.Progress, next.Region)
		if next != current {
			plan.Update = append(plan.Update, next)
		}
	}

	for pos, t := range byPos {
		if _, ok := inLayout[pos]; !ok {
			plan.Delete = append(plan.Delete, t.ID)
		}
	}
	sort.Strings(plan.Delete)
	return plan
}

// ApplySyncPlan returns the tile set after plan, ordered by row and column.
func ApplySyncPlan(existing []Tile, plan SyncPlan) []Tile {
	deleted := make(map[string]struct{}, len(plan.Delete))
	for _, id := range plan.Delete {
		deleted[id] = struct{}{}
	}
	updated := make(map[string]Tile, len(plan.Update))
	for _, t := range plan.Update {
		updated[t.ID] = t
	}
	out := make([]Tile, 0, len(existing)+len(plan.Insert))
	for _, t := range existing {
		if _, ok := deleted[t.ID]; ok {
			continue
		}
		if u, ok := updated[t.ID]; ok {
			t = u
		}
		out = append(out, t)
	}
	out = append(out, plan.Insert...)
	return sortedTiles(out)
}

// PlanSeed raises the start anchor to level 1 when nothing is conquered, so
// the world always has a frontier. It reports false when no seed is needed or
// no anchor exists.
func PlanSeed(tiles []Tile, preferredID string) (Tile, bool) {
	for _, t := range tiles {
		if IsConquered(t) {
			return Tile{}, false
		}
	}
	id := PickStartAnchorID(tiles, preferredID)
	if id == "" {
		return Tile{}, false
	}
	for _, t := range tiles {
		if t.ID != id {
			continue
		}
		if need := TotalRequiredForLevel(1, t.Region); t.Progress < need {
			t.Progress = need
		}
		t.Level = LevelFromProgress(t.Progress, t.Region)
		return t, true
	}
	return Tile{}, false
}

func sortedTiles(tiles []Tile) []Tile {
	out := make([]Tile, len(tiles))
	copy(out, tiles)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		if out[i].Col != out[j].Col {
			return out[i].Col < out[j].Col
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SortTiles orders tiles by row, then column.
func SortTiles(tiles []Tile) []Tile {
	return sortedTiles(tiles)
}
