package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"realmlog/internal/realm"
	"realmlog/internal/store"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "realm.db")
	c, err := New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("New(%q): %v", dsn, err)
	}
	t.Cleanup(func() { c.Close(context.Background()) })
	if err := c.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return c
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
	rows, err := c.RunSQL(ctx, "SELECT COUNT(*) AS n FROM player", nil)
	if err != nil {
		t.Fatal(err)
	}
	if n := rows[0]["n"]; n != int64(1) {
		t.Fatalf("expected exactly one player row, got %v", n)
	}
}

func TestEnsureSchemaAddsLaterColumns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "old.db")

	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = raw.Exec(`CREATE TABLE tiles (id TEXT PRIMARY KEY, grid_row INTEGER NOT NULL, grid_col INTEGER NOT NULL, region TEXT NOT NULL, level INTEGER NOT NULL DEFAULT 0);
	INSERT INTO tiles (id, grid_row, grid_col, region, level) VALUES ('r0c0', 0, 0, 'meadow', 1);`)
	raw.Close()
	if err != nil {
		t.Fatalf("creating old schema: %v", err)
	}

	c, err := New(ctx, "sqlite://"+path)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close(ctx)
	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema on old database: %v", err)
	}

	tiles, err := c.ListTiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 1 || tiles[0].Progress != 0 || tiles[0].Locked || tiles[0].Region != "meadow" {
		t.Fatalf("unexpected migrated tiles %+v", tiles)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := c.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertTile(ctx, realm.Tile{ID: "r0c0", Region: realm.Heartlands}); err != nil {
			return err
		}
		if err := tx.SavePlayer(ctx, realm.Player{XP: 10}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	tiles, err := c.ListTiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 0 {
		t.Fatalf("rolled back insert is visible: %+v", tiles)
	}
	p, err := c.GetPlayer(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if p.XP != 0 {
		t.Fatalf("rolled back player update is visible: %+v", p)
	}
}

func TestTilesAndPlayer(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	gate := realm.Tile{ID: "r0c1", Row: 0, Col: 1, Region: realm.EmberPeaks, Feature: realm.FeatureGate}
	err := c.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertTile(ctx, realm.Tile{ID: "r0c0", Row: 0, Col: 0, Region: realm.Heartlands, Level: 1, Progress: 60}); err != nil {
			return err
		}
		if err := tx.InsertTile(ctx, gate); err != nil {
			return err
		}
		if err := tx.InsertTile(ctx, realm.Tile{ID: "r1c0", Row: 1, Col: 0, Region: realm.GreatDepths, Locked: true}); err != nil {
			return err
		}
		gate.Progress = 90
		gate.Level = 1
		if err := tx.UpdateTile(ctx, gate); err != nil {
			return err
		}
		if err := tx.DeleteTiles(ctx, []string{"r1c0"}); err != nil {
			return err
		}
		return tx.SavePlayer(ctx, realm.Player{XP: 30, Lore: 30, TargetTileID: "r0c1"})
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	tiles, err := c.ListTiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 2 {
		t.Fatalf("expected 2 tiles, got %+v", tiles)
	}
	if tiles[1] != gate {
		t.Fatalf("gate = %+v, want %+v", tiles[1], gate)
	}

	p, err := c.GetPlayer(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if p.XP != 30 || p.Lore != 30 || p.TargetTileID != "r0c1" {
		t.Fatalf("unexpected player %+v", p)
	}

	err = c.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateTile(ctx, realm.Tile{ID: "missing"})
	})
	if err == nil {
		t.Fatalf("updating a missing tile should fail")
	}
}

func TestSessions(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	amount := 250

	sessions := []realm.Session{
		{ID: "s1", CreatedAt: base, Activity: realm.ActivityWork, Minutes: 50, Note: "code-review for the billing service"},
		{ID: "s2", CreatedAt: base.Add(time.Hour), Activity: "exercise", Minutes: 30, Note: "easy run"},
		{ID: "s3", CreatedAt: base.Add(2 * time.Hour), Activity: realm.ActivityIncome, Amount: &amount, Subtype: "freelance"},
	}
	err := c.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, s := range sessions {
			if err := tx.InsertSession(ctx, s); err != nil {
				return err
			}
		}
		n, err := tx.RenameSessionActivity(ctx, "exercise", string(realm.ActivitySport))
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("renamed %d sessions, want 1", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	all, err := c.ListSessions(ctx, store.SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID != "s3" {
		t.Fatalf("expected newest first, got %+v", all)
	}
	if all[0].Amount == nil || *all[0].Amount != 250 || all[0].Subtype != "freelance" {
		t.Fatalf("income session lost fields: %+v", all[0])
	}
	if !all[2].CreatedAt.Equal(base) {
		t.Fatalf("created_at = %v, want %v", all[2].CreatedAt, base)
	}

	sport, err := c.ListSessions(ctx, store.SessionFilter{Activity: string(realm.ActivitySport)})
	if err != nil {
		t.Fatal(err)
	}
	if len(sport) != 1 || sport[0].ID != "s2" {
		t.Fatalf("activity filter: %+v", sport)
	}

	recent, err := c.ListSessions(ctx, store.SessionFilter{Since: base.Add(30 * time.Minute)})
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("since filter: %+v", recent)
	}

	found, err := c.SearchSessions(ctx, "billing code-review", 10)
	if err != nil {
		t.Fatalf("SearchSessions: %v", err)
	}
	if len(found) != 1 || found[0].ID != "s1" {
		t.Fatalf("search: %+v", found)
	}

	if _, err := c.SearchSessions(ctx, "  ", 10); err == nil {
		t.Fatalf("empty query should fail")
	}
}

func TestTimers(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	open, err := c.GetOpenTimer(ctx)
	if err != nil || open != nil {
		t.Fatalf("expected no open timer, got %+v, %v", open, err)
	}

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ends := start.Add(25 * time.Minute)
	timer := realm.TimerSession{
		ID: "t1", Activity: realm.ActivityStudy, Mode: realm.TimerCountdown,
		StartedAt: start, EndsAt: &ends, Status: realm.TimerRunning, Note: "chapter 3",
	}
	if err := c.InsertTimer(ctx, timer); err != nil {
		t.Fatalf("InsertTimer: %v", err)
	}

	stopped := start.Add(10 * time.Minute)
	timer.StoppedAt = &stopped
	timer.Status = realm.TimerStopped
	if err := c.UpdateTimer(ctx, timer); err != nil {
		t.Fatalf("UpdateTimer: %v", err)
	}

	open, err = c.GetOpenTimer(ctx)
	if err != nil || open == nil {
		t.Fatalf("expected open timer, got %v", err)
	}
	if open.Status != realm.TimerStopped || !open.StoppedAt.Equal(stopped) || !open.EndsAt.Equal(ends) || open.Note != "chapter 3" {
		t.Fatalf("unexpected timer %+v", open)
	}

	timer.Status = realm.TimerCommitted
	if err := c.UpdateTimer(ctx, timer); err != nil {
		t.Fatal(err)
	}
	if open, _ := c.GetOpenTimer(ctx); open != nil {
		t.Fatalf("committed timer must not be open")
	}

	if err := c.DeleteTimer(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
}

func TestExportImportAndReset(t *testing.T) {
	src := newTestClient(t)
	ctx := context.Background()

	err := src.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.InsertTile(ctx, realm.Tile{ID: "r0c0", Region: realm.Heartlands, Level: 1, Progress: 75}); err != nil {
			return err
		}
		if err := tx.InsertSession(ctx, realm.Session{ID: "s1", CreatedAt: time.Now(), Activity: realm.ActivityStudy, Minutes: 75, Note: "thesis"}); err != nil {
			return err
		}
		return tx.SavePlayer(ctx, realm.Player{XP: 75, Lore: 0, TargetTileID: "r0c0"})
	})
	if err != nil {
		t.Fatal(err)
	}

	tables, err := src.ExportTables(ctx)
	if err != nil {
		t.Fatalf("ExportTables: %v", err)
	}
	if len(tables["tiles"]) != 1 || len(tables["sessions"]) != 1 || len(tables["player"]) != 1 {
		t.Fatalf("unexpected export %+v", tables)
	}

	dst := newTestClient(t)
	if err := dst.ImportTables(ctx, tables); err != nil {
		t.Fatalf("ImportTables: %v", err)
	}
	tiles, _ := dst.ListTiles(ctx)
	if len(tiles) != 1 || tiles[0].Progress != 75 {
		t.Fatalf("imported tiles %+v", tiles)
	}
	found, err := dst.SearchSessions(ctx, "thesis", 5)
	if err != nil || len(found) != 1 {
		t.Fatalf("imported sessions not searchable: %+v, %v", found, err)
	}

	bad := map[string][]map[string]any{"tiles": {{"id": "r0c0", "evil": 1}}}
	if err := dst.ImportTables(ctx, bad); !errors.Is(err, store.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}

	if err := dst.ResetTiles(ctx); err != nil {
		t.Fatal(err)
	}
	if err := dst.ResetPlayer(ctx); err != nil {
		t.Fatal(err)
	}
	if err := dst.ResetSessions(ctx); err != nil {
		t.Fatal(err)
	}
	tiles, _ = dst.ListTiles(ctx)
	if len(tiles) != 1 || tiles[0].Progress != 0 || tiles[0].Level != 0 || tiles[0].Region != realm.Heartlands {
		t.Fatalf("reset tiles %+v", tiles)
	}
	p, _ := dst.GetPlayer(ctx)
	if p != (realm.Player{}) {
		t.Fatalf("reset player %+v", p)
	}
	sessions, _ := dst.ListSessions(ctx, store.SessionFilter{})
	if len(sessions) != 0 {
		t.Fatalf("reset sessions %+v", sessions)
	}
}

func TestParseDSN(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "sqlite://:memory:", want: ":memory:"},
		{in: "sqlite:///var/lib/realm.db", want: "/var/lib/realm.db"},
		{in: "sqlite://realm.db", want: "./realm.db"},
		{in: "sqlite://data/realm.db?_pragma=foreign_keys(1)", want: "./data/realm.db?_pragma=foreign_keys(1)"},
		{in: "postgres://localhost/realm", wantErr: true},
		{in: "sqlite://", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDSN(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("parseDSN(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
