package realm

import "sort"

// EligibleFor reports whether minutes of activity may be invested in t.
func (idx *Index) EligibleFor(t Tile, activity Activity) bool {
	return idx.CanInvest(t) && t.Region.Allows(activity) && t.Level < MaxLevel
}

// PickInvestTarget chooses where session minutes go when the player gave no
// usable target. Lower region tier wins, then higher level, then the tile
// closest to its next level, then row and column.
func (idx *Index) PickInvestTarget(tiles []Tile, activity Activity) (Tile, bool) {
	candidates := make([]Tile, 0)
	for _, t := range tiles {
		if idx.EligibleFor(t, activity) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return Tile{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if ta, tb := a.Region.Tier(), b.Region.Tier(); ta != tb {
			return ta < tb
		}
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		if ra, rb := ProgressRatio(a), ProgressRatio(b); ra != rb {
			return ra > rb
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
	return candidates[0], true
}
