package check

import (
	"context"
	"fmt"
	"sort"

	"realmlog/internal/realm"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeLevelMismatch    = "level_progress_mismatch"
	codeVoidUnlocked     = "void_unlocked"
	codeNegativePool     = "negative_pool"
	codeTargetInvalid    = "target_invalid"
	codeNoConquered      = "no_conquered_tile"
	codeDuplicatePos     = "duplicate_position"
	codeUnknownRegion    = "unknown_region"
	codeLegacyRegion     = "legacy_region"
	codeUnknownFeature   = "unknown_feature"
	codeProgressNegative = "negative_progress"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	TileID   string   `json:"tile_id,omitempty"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

func (r *Report) Errors() int {
	return r.count(SeverityError)
}

func (r *Report) Warnings() int {
	return r.count(SeverityWarn)
}

func (r *Report) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// Source is the read side of the store the check runs against.
type Source interface {
	GetPlayer(ctx context.Context) (realm.Player, error)
	ListTiles(ctx context.Context) ([]realm.Tile, error)
}

// Run inspects persisted state. It never repairs anything; game init does.
func Run(ctx context.Context, src Source) (*Report, error) {
	if src == nil {
		return nil, fmt.Errorf("store is required")
	}
	player, err := src.GetPlayer(ctx)
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	tiles, err := src.ListTiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tiles: %w", err)
	}

	issues := make([]Issue, 0)
	issues = append(issues, checkTiles(tiles)...)
	issues = append(issues, checkPositions(tiles)...)
	issues = append(issues, checkPlayer(player, tiles)...)
	return &Report{Issues: issues}, nil
}

func checkTiles(tiles []realm.Tile) []Issue {
	var issues []Issue
	conquered := false
	for _, t := range tiles {
		if _, ok := realm.LookupRegion(t.Region); !ok {
			if id, legacy := realm.NormalizeRegion(string(t.Region)); legacy {
				issues = append(issues, tileIssue(t, SeverityWarn, codeLegacyRegion,
					fmt.Sprintf("legacy region %q; init remaps it to %s", t.Region, id)))
			} else {
				issues = append(issues, tileIssue(t, SeverityError, codeUnknownRegion,
					fmt.Sprintf("unknown region %q", t.Region)))
			}
		}
		if !t.Feature.Valid() {
			issues = append(issues, tileIssue(t, SeverityError, codeUnknownFeature,
				fmt.Sprintf("unknown feature %q", t.Feature)))
		}
		if t.Progress < 0 {
			issues = append(issues, tileIssue(t, SeverityError, codeProgressNegative,
				fmt.Sprintf("progress is %d", t.Progress)))
		}
		if want := realm.LevelFromProgress(t.Progress, t.Region); t.Level != want {
			issues = append(issues, tileIssue(t, SeverityError, codeLevelMismatch,
				fmt.Sprintf("level %d but progress %d gives level %d", t.Level, t.Progress, want)))
		}
		if realm.IsPermanentlyLocked(t) && (!t.Locked || t.Level > 0 || t.Progress > 0) {
			issues = append(issues, tileIssue(t, SeverityError, codeVoidUnlocked,
				fmt.Sprintf("void tile is open (locked=%t, level %d, progress %d)", t.Locked, t.Level, t.Progress)))
		}
		if realm.IsConquered(t) {
			conquered = true
		}
	}
	if len(tiles) > 0 && !conquered {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeNoConquered,
			Message:  "no conquered tile; the realm has no frontier until init seeds one",
		})
	}
	return issues
}

func checkPositions(tiles []realm.Tile) []Issue {
	byPos := make(map[[2]int][]string)
	for _, t := range tiles {
		key := [2]int{t.Row, t.Col}
		byPos[key] = append(byPos[key], t.ID)
	}
	var issues []Issue
	for pos, ids := range byPos {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeDuplicatePos,
			Message:  fmt.Sprintf("tiles %v share row %d col %d", ids, pos[0], pos[1]),
			TileID:   ids[0],
		})
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].TileID < issues[j].TileID })
	return issues
}

func checkPlayer(p realm.Player, tiles []realm.Tile) []Issue {
	var issues []Issue
	pools := []struct {
		name  string
		value int
	}{
		{"xp", p.XP},
		{"craft", p.Craft},
		{"lore", p.Lore},
		{"vigor", p.Vigor},
		{"clarity", p.Clarity},
		{"gold", p.Gold},
	}
	for _, pool := range pools {
		if pool.value < 0 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeNegativePool,
				Message:  fmt.Sprintf("%s is %d", pool.name, pool.value),
			})
		}
	}

	if p.TargetTileID == "" {
		return issues
	}
	idx := realm.NewIndex(tiles)
	target, ok := idx.Tile(p.TargetTileID)
	switch {
	case !ok:
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeTargetInvalid,
			Message:  "target tile does not exist",
			TileID:   p.TargetTileID,
		})
	case realm.IsHardLocked(target):
		issues = append(issues, tileIssue(target, SeverityWarn, codeTargetInvalid, "target tile is sealed"))
	}
	return issues
}

func tileIssue(t realm.Tile, severity Severity, code, message string) Issue {
	return Issue{
		Severity: severity,
		Code:     code,
		Message:  message,
		TileID:   t.ID,
	}
}
