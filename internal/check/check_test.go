package check

import (
	"context"
	"errors"
	"testing"

	"realmlog/internal/realm"
)

type mockSource struct {
	player realm.Player
	tiles  []realm.Tile
	err    error
}

func (m *mockSource) GetPlayer(ctx context.Context) (realm.Player, error) {
	return m.player, m.err
}

func (m *mockSource) ListTiles(ctx context.Context) ([]realm.Tile, error) {
	return m.tiles, m.err
}

func healthyTiles() []realm.Tile {
	return []realm.Tile{
		{ID: "r0c0", Row: 0, Col: 0, Region: realm.Heartlands, Level: 1, Progress: 60},
		{ID: "r0c1", Row: 0, Col: 1, Region: realm.Heartlands},
		{ID: "r0c2", Row: 0, Col: 2, Region: realm.GreatDepths, Feature: realm.FeatureVoid, Locked: true},
	}
}

func TestRun_Healthy(t *testing.T) {
	src := &mockSource{player: realm.Player{XP: 60, Craft: 10, TargetTileID: "r0c1"}, tiles: healthyTiles()}
	report, err := Run(context.Background(), src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", report.Issues)
	}
}

func TestRun_Issues(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(p *realm.Player, tiles []realm.Tile) []realm.Tile
		code     string
		severity Severity
	}{
		{
			name: "level does not match progress",
			mutate: func(p *realm.Player, tiles []realm.Tile) []realm.Tile {
				tiles[0].Level = 2
				return tiles
			},
			code:     codeLevelMismatch,
			severity: SeverityError,
		},
		{
			name: "void tile unsealed",
			mutate: func(p *realm.Player, tiles []realm.Tile) []realm.Tile {
				tiles[2].Locked = false
				return tiles
			},
			code:     codeVoidUnlocked,
			severity: SeverityError,
		},
		{
			name: "negative pool",
			mutate: func(p *realm.Player, tiles []realm.Tile) []realm.Tile {
				p.Lore = -5
				return tiles
			},
			code:     codeNegativePool,
			severity: SeverityError,
		},
		{
			name: "target missing",
			mutate: func(p *realm.Player, tiles []realm.Tile) []realm.Tile {
				p.TargetTileID = "r9c9"
				return tiles
			},
			code:     codeTargetInvalid,
			severity: SeverityWarn,
		},
		{
			name: "target sealed",
			mutate: func(p *realm.Player, tiles []realm.Tile) []realm.Tile {
				p.TargetTileID = "r0c2"
				return tiles
			},
			code:     codeTargetInvalid,
			severity: SeverityWarn,
		},
		{
			name: "nothing conquered",
			mutate: func(p *realm.Player, tiles []realm.Tile) []realm.Tile {
				tiles[0].Level, tiles[0].Progress = 0, 0
				return tiles
			},
			code:     codeNoConquered,
			severity: SeverityWarn,
		},
		{
			name: "two tiles on one cell",
			mutate: func(p *realm.Player, tiles []realm.Tile) []realm.Tile {
				return append(tiles, realm.Tile{ID: "dup", Row: 0, Col: 1, Region: realm.Heartlands})
			},
			code:     codeDuplicatePos,
			severity: SeverityError,
		},
		{
			name: "unknown region",
			mutate: func(p *realm.Player, tiles []realm.Tile) []realm.Tile {
				tiles[1].Region = "atlantis"
				return tiles
			},
			code:     codeUnknownRegion,
			severity: SeverityError,
		},
		{
			name: "legacy region",
			mutate: func(p *realm.Player, tiles []realm.Tile) []realm.Tile {
				tiles[1].Region = "meadow"
				return tiles
			},
			code:     codeLegacyRegion,
			severity: SeverityWarn,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := realm.Player{XP: 60}
			tiles := tt.mutate(&player, healthyTiles())
			report, err := Run(context.Background(), &mockSource{player: player, tiles: tiles})
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			issue, ok := findIssue(report.Issues, tt.code)
			if !ok {
				t.Fatalf("expected %s issue, got %+v", tt.code, report.Issues)
			}
			if issue.Severity != tt.severity {
				t.Fatalf("severity = %s, want %s", issue.Severity, tt.severity)
			}
		})
	}
}

func TestReportCounts(t *testing.T) {
	tiles := healthyTiles()
	tiles[0].Level = 3
	src := &mockSource{player: realm.Player{Gold: -1, TargetTileID: "gone"}, tiles: tiles}
	report, err := Run(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if report.Errors() != 2 {
		t.Fatalf("errors = %d, want 2: %+v", report.Errors(), report.Issues)
	}
	if report.Warnings() != 1 {
		t.Fatalf("warnings = %d, want 1: %+v", report.Warnings(), report.Issues)
	}
}

func TestRun_StoreError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := Run(context.Background(), &mockSource{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if _, err := Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}

func findIssue(issues []Issue, code string) (Issue, bool) {
	for _, issue := range issues {
		if issue.Code == code {
			return issue, true
		}
	}
	return Issue{}, false
}

func TestRun_LegacyRegionIsNotUnknown(t *testing.T) {
	tiles := healthyTiles()
	tiles[1].Region = "Depths"
	report, err := Run(context.Background(), &mockSource{player: realm.Player{XP: 60}, tiles: tiles})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := findIssue(report.Issues, codeUnknownRegion); ok {
		t.Fatalf("legacy region reported as unknown: %+v", report.Issues)
	}
	if report.Errors() != 0 || report.Warnings() != 1 {
		t.Fatalf("unexpected counts: %+v", report.Issues)
	}
}
