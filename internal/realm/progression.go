package realm

import "math"

const (
	BaseMinutes = 60
	MaxLevel    = 3
)

// SegmentNeed is the number of minutes needed to go from level to level+1.
func SegmentNeed(level int, region RegionID) int {
	if level < 0 {
		level = 0
	}
	need := int(math.Round(float64(BaseMinutes) * float64(level+1) * region.Multiplier()))
	if need < 1 {
		return 1
	}
	return need
}

func TotalRequiredForLevel(level int, region RegionID) int {
	total := 0
	for i := 0; i < level; i++ {
		total += SegmentNeed(i, region)
	}
	return total
}

func LevelFromProgress(total int, region RegionID) int {
	level := 0
	for level < MaxLevel && total >= TotalRequiredForLevel(level+1, region) {
		level++
	}
	return level
}

// ApplyMinutes returns t with added minutes invested. Negative deltas are
// ignored: progress never goes down.
func ApplyMinutes(t Tile, added int) Tile {
	if added > 0 {
		t.Progress += added
	}
	if t.Progress < 0 {
		t.Progress = 0
	}
	t.Level = LevelFromProgress(t.Progress, t.Region)
	return t
}

func ProgressRatio(t Tile) float64 {
	level := LevelFromProgress(t.Progress, t.Region)
	if level >= MaxLevel {
		return 1.0
	}
	into := t.Progress - TotalRequiredForLevel(level, t.Region)
	ratio := float64(into) / float64(SegmentNeed(level, t.Region))
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	}
	return ratio
}

// MinutesToNextLevel is zero once the tile is at MaxLevel.
func MinutesToNextLevel(t Tile) int {
	level := LevelFromProgress(t.Progress, t.Region)
	if level >= MaxLevel {
		return 0
	}
	return TotalRequiredForLevel(level+1, t.Region) - t.Progress
}
