package realm

import (
	"errors"
	"fmt"
)

const (
	codeEmpty = '.'
	codeStart = 'S'
)

type cellCode struct {
	region  RegionID
	feature Feature
	locked  bool
}

// letterCodes override the digit table for special features.
var letterCodes = map[rune]cellCode{
	codeStart: {region: StartRegion},
	'G':       {region: EmberPeaks, feature: FeatureGate},
	'V':       {region: GreatDepths, feature: FeatureVoid, locked: true},
	'J':       {region: JailorReach, feature: FeatureJailorCitadel},
	'B':       {region: VoidHeart, feature: FeatureBlackStar, locked: true},
}

// DefaultLayout is the canonical realm map.
var DefaultLayout = []string{
	"..1111122222666...",
	".011111222226666..",
	"00001112222266667.",
	"000S0011222G666777",
	"0000003333555G7777",
	".00004333355557777",
	"..444443335555J777",
	"..444443388888877.",
	"...4444888V888888.",
	"....44888888889998",
	".....8888888899B99",
	"......88888889999.",
}

var (
	ErrEmptyLayout    = errors.New("layout has no tiles")
	ErrMultipleStarts = errors.New("layout has more than one start tile")
)

type Cell struct {
	Row     int
	Col     int
	Region  RegionID
	Feature Feature
	Locked  bool
}

type Layout struct {
	Cells   []Cell
	StartID string
	Rows    int
	Cols    int
}

func DecodeCode(code rune) (Cell, bool, error) {
	if code == codeEmpty || code == ' ' {
		return Cell{}, false, nil
	}
	if code >= '0' && code <= '9' {
		r := regions[code-'0']
		return Cell{Region: r.ID, Locked: r.DefaultLocked}, true, nil
	}
	if c, ok := letterCodes[code]; ok {
		return Cell{Region: c.region, Feature: c.feature, Locked: c.locked || c.region.DefaultLocked()}, true, nil
	}
	return Cell{}, false, fmt.Errorf("unknown layout code %q", code)
}

func DecodeLayout(rows []string) (*Layout, error) {
	layout := &Layout{Rows: len(rows)}
	for r, line := range rows {
		col := 0
		for _, code := range line {
			cell, present, err := DecodeCode(code)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", r, col, err)
			}
			if present {
				cell.Row, cell.Col = r, col
				if code == codeStart {
					if layout.StartID != "" {
						return nil, ErrMultipleStarts
					}
					layout.StartID = TileID(r, col)
				}
				layout.Cells = append(layout.Cells, cell)
			}
			col++
		}
		if col > layout.Cols {
			layout.Cols = col
		}
	}
	if len(layout.Cells) == 0 {
		return nil, ErrEmptyLayout
	}
	return layout, nil
}

// MustDefaultLayout decodes DefaultLayout, which is known to be valid.
func MustDefaultLayout() *Layout {
	layout, err := DecodeLayout(DefaultLayout)
	if err != nil {
		panic(err)
	}
	return layout
}

// Tiles returns fresh level-0 tiles for every cell.
func (l *Layout) Tiles() []Tile {
	out := make([]Tile, 0, len(l.Cells))
	for _, c := range l.Cells {
		out = append(out, Tile{
			ID:      TileID(c.Row, c.Col),
			Row:     c.Row,
			Col:     c.Col,
			Region:  c.Region,
			Feature: c.Feature,
			Locked:  c.Locked,
		})
	}
	return out
}
