package realm

import "fmt"

type Reachability string

const (
	HardLocked  Reachability = "hard_locked"
	Unreachable Reachability = "unreachable"
	Frontier    Reachability = "frontier"
	Conquered   Reachability = "conquered"
)

type position struct {
	row, col int
}

var neighbourOffsets = [8]position{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Index answers reachability questions over one snapshot of tiles. It holds
// no persisted state and must be rebuilt after tiles change.
type Index struct {
	byID  map[string]Tile
	byPos map[position]Tile
}

func NewIndex(tiles []Tile) *Index {
	idx := &Index{
		byID:  make(map[string]Tile, len(tiles)),
		byPos: make(map[position]Tile, len(tiles)),
	}
	for _, t := range tiles {
		idx.byID[t.ID] = t
		idx.byPos[position{t.Row, t.Col}] = t
	}
	return idx
}

func (idx *Index) Tile(id string) (Tile, bool) {
	t, ok := idx.byID[id]
	return t, ok
}

func (idx *Index) Len() int {
	return len(idx.byID)
}

func IsHardLocked(t Tile) bool {
	return t.Locked || t.Feature == FeatureVoid || t.Region == VoidHeart
}

// IsPermanentlyLocked is true for tiles no gate can ever open.
func IsPermanentlyLocked(t Tile) bool {
	return t.Feature == FeatureVoid || t.Region == VoidHeart
}

func IsConquered(t Tile) bool {
	return t.Level >= 1 && !IsHardLocked(t)
}

func (idx *Index) Neighbours(t Tile) []Tile {
	out := make([]Tile, 0, len(neighbourOffsets))
	for _, off := range neighbourOffsets {
		if n, ok := idx.byPos[position{t.Row + off.row, t.Col + off.col}]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (idx *Index) TouchesConquered(t Tile) bool {
	for _, n := range idx.Neighbours(t) {
		if IsConquered(n) {
			return true
		}
	}
	return false
}

func (idx *Index) IsFrontier(t Tile) bool {
	return t.Level == 0 && !IsHardLocked(t) && idx.TouchesConquered(t)
}

func (idx *Index) CanInvest(t Tile) bool {
	return IsConquered(t) || idx.IsFrontier(t)
}

func (idx *Index) Reachability(t Tile) Reachability {
	switch {
	case IsHardLocked(t):
		return HardLocked
	case IsConquered(t):
		return Conquered
	case idx.IsFrontier(t):
		return Frontier
	}
	return Unreachable
}

func (idx *Index) Reason(t Tile) string {
	switch {
	case IsPermanentlyLocked(t):
		return "The Void is sealed forever; nothing can be invested here."
	case t.Locked && t.Region == GatedRegion:
		return "Sealed by the Great Depths. Conquer a Gate to break the seal."
	case t.Locked:
		return "This tile is sealed."
	case IsConquered(t):
		if t.Level >= MaxLevel {
			return fmt.Sprintf("Conquered at max level %d.", t.Level)
		}
		return fmt.Sprintf("Conquered (level %d); keep investing to level up.", t.Level)
	case idx.IsFrontier(t):
		return "Frontier: borders conquered land and can be claimed."
	}
	return "Unreachable: conquer an adjacent tile first."
}

// Frontier lists every frontier tile in id order of the snapshot slice.
func (idx *Index) Frontier(tiles []Tile) []Tile {
	var out []Tile
	for _, t := range tiles {
		if idx.IsFrontier(t) {
			out = append(out, t)
		}
	}
	return out
}

// ApplyGateUnlock clears the seal on every gated-region tile that a gate can
// open. It returns only the tiles whose lock flag changed.
func ApplyGateUnlock(tiles []Tile) []Tile {
	var changed []Tile
	for _, t := range tiles {
		if t.Region != GatedRegion || !t.Locked || IsPermanentlyLocked(t) {
			continue
		}
		t.Locked = false
		changed = append(changed, t)
	}
	return changed
}

// GateOpen reports whether any gate tile has been conquered.
func GateOpen(tiles []Tile) bool {
	for _, t := range tiles {
		if t.Feature == FeatureGate && t.Level >= 1 {
			return true
		}
	}
	return false
}

// PickStartAnchorID chooses the tile a fresh world is seeded from.
func PickStartAnchorID(tiles []Tile, preferredID string) string {
	if len(tiles) == 0 {
		return ""
	}
	if preferredID != "" {
		for _, t := range tiles {
			if t.ID == preferredID && !IsHardLocked(t) {
				return t.ID
			}
		}
	}

	minRow, maxRow := tiles[0].Row, tiles[0].Row
	for _, t := range tiles {
		if t.Row < minRow {
			minRow = t.Row
		}
		if t.Row > maxRow {
			maxRow = t.Row
		}
	}
	middleRow := (minRow + maxRow) / 2

	pick := func(filter func(Tile) bool) string {
		best := ""
		var bestTile Tile
		bestScore := 0
		for _, t := range tiles {
			if IsHardLocked(t) || !filter(t) {
				continue
			}
			score := t.Col*2 + abs(t.Row-middleRow)
			if best == "" || score < bestScore ||
				(score == bestScore && (t.Row < bestTile.Row || (t.Row == bestTile.Row && t.Col < bestTile.Col))) {
				best, bestTile, bestScore = t.ID, t, score
			}
		}
		return best
	}

	if id := pick(func(t Tile) bool { return t.Region == StartRegion }); id != "" {
		return id
	}
	return pick(func(Tile) bool { return true })
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
