package realm

import (
	"fmt"
	"time"
)

type Feature string

const (
	FeatureNone          Feature = ""
	FeatureGate          Feature = "gate"
	FeatureVoid          Feature = "void"
	FeatureJailorCitadel Feature = "jailor_citadel"
	FeatureBlackStar     Feature = "black_star"
)

func (f Feature) Valid() bool {
	switch f {
	case FeatureNone, FeatureGate, FeatureVoid, FeatureJailorCitadel, FeatureBlackStar:
		return true
	}
	return false
}

type Tile struct {
	ID       string   `json:"id"`
	Row      int      `json:"row"`
	Col      int      `json:"col"`
	Region   RegionID `json:"region"`
	Level    int      `json:"level"`
	Progress int      `json:"progress"`
	Feature  Feature  `json:"feature,omitempty"`
	Locked   bool     `json:"locked"`
}

// TileID is stable for a cell as long as the cell stays in the layout.
func TileID(row, col int) string {
	return fmt.Sprintf("r%dc%d", row, col)
}

const PlayerID = 1

type Player struct {
	XP           int    `json:"xp"`
	Craft        int    `json:"craft"`
	Lore         int    `json:"lore"`
	Vigor        int    `json:"vigor"`
	Clarity      int    `json:"clarity"`
	Gold         int    `json:"gold"`
	TargetTileID string `json:"target_tile_id,omitempty"`
}

func (p Player) Pool(key ResourceKey) int {
	switch key {
	case ResourceCraft:
		return p.Craft
	case ResourceLore:
		return p.Lore
	case ResourceVigor:
		return p.Vigor
	case ResourceClarity:
		return p.Clarity
	case ResourceGold:
		return p.Gold
	}
	return 0
}

// WithDelta returns a copy of p with amount added to the pool. Pools are
// clamped at zero.
func (p Player) WithDelta(key ResourceKey, amount int) Player {
	apply := func(v int) int {
		v += amount
		if v < 0 {
			return 0
		}
		return v
	}
	switch key {
	case ResourceCraft:
		p.Craft = apply(p.Craft)
	case ResourceLore:
		p.Lore = apply(p.Lore)
	case ResourceVigor:
		p.Vigor = apply(p.Vigor)
	case ResourceClarity:
		p.Clarity = apply(p.Clarity)
	case ResourceGold:
		p.Gold = apply(p.Gold)
	}
	return p
}

type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Activity  Activity  `json:"activity"`
	Minutes   int       `json:"minutes"`
	Note      string    `json:"note,omitempty"`
	Subtype   string    `json:"subtype,omitempty"`
	Amount    *int      `json:"amount,omitempty"`
	TileID    string    `json:"tile_id,omitempty"`
}

type TimerMode string

const (
	TimerCountdown TimerMode = "countdown"
	TimerCountup   TimerMode = "countup"
)

type TimerStatus string

const (
	TimerRunning   TimerStatus = "running"
	TimerStopped   TimerStatus = "stopped"
	TimerCommitted TimerStatus = "committed"
)

type TimerSession struct {
	ID        string      `json:"id"`
	Activity  Activity    `json:"activity"`
	Mode      TimerMode   `json:"mode"`
	StartedAt time.Time   `json:"started_at"`
	EndsAt    *time.Time  `json:"ends_at,omitempty"`
	StoppedAt *time.Time  `json:"stopped_at,omitempty"`
	Status    TimerStatus `json:"status"`
	Note      string      `json:"note,omitempty"`
	Subtype   string      `json:"subtype,omitempty"`
}
