package realm

import "testing"

func mustLayout(t *testing.T, rows ...string) *Layout {
	t.Helper()
	layout, err := DecodeLayout(rows)
	if err != nil {
		t.Fatalf("decoding layout: %v", err)
	}
	return layout
}

func TestPlanSyncFreshWorld(t *testing.T) {
	layout := mustLayout(t, "S0", "18")
	plan := PlanSync(nil, layout)
	if len(plan.Insert) != 4 || len(plan.Update) != 0 || len(plan.Delete) != 0 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	for _, tile := range plan.Insert {
		if tile.Level != 0 || tile.Progress != 0 {
			t.Fatalf("new tile %s must start empty", tile.ID)
		}
	}
}

func TestPlanSyncIdempotent(t *testing.T) {
	layout := mustLayout(t, "S0G", "188")
	tiles := ApplySyncPlan(nil, PlanSync(nil, layout))
	if plan := PlanSync(tiles, layout); !plan.Empty() {
		t.Fatalf("second sync should be a no-op, got %+v", plan)
	}
}

func TestPlanSyncRepairsRegionKeepsProgress(t *testing.T) {
	layout := mustLayout(t, "1")
	existing := []Tile{{ID: "r0c0", Row: 0, Col: 0, Region: Heartlands, Progress: 200, Level: 2}}

	plan := PlanSync(existing, layout)
	if len(plan.Update) != 1 {
		t.Fatalf("expected one update, got %+v", plan)
	}
	got := plan.Update[0]
	if got.Region != ForgeHills || got.Progress != 200 {
		t.Fatalf("unexpected repaired tile %+v", got)
	}
	if got.Level != LevelFromProgress(200, ForgeHills) {
		t.Fatalf("level not recomputed: %d", got.Level)
	}
}

func TestPlanSyncNeverUnseals(t *testing.T) {
	layout := mustLayout(t, "0")
	existing := []Tile{{ID: "r0c0", Row: 0, Col: 0, Region: Heartlands, Locked: true}}
	if plan := PlanSync(existing, layout); !plan.Empty() {
		t.Fatalf("sync must not unseal, got %+v", plan)
	}
}

func TestPlanSyncSealsNewlySealedCells(t *testing.T) {
	layout := mustLayout(t, "8")
	existing := []Tile{{ID: "r0c0", Row: 0, Col: 0, Region: Heartlands}}
	plan := PlanSync(existing, layout)
	if len(plan.Update) != 1 || !plan.Update[0].Locked {
		t.Fatalf("expected tile to be sealed, got %+v", plan)
	}
}

func TestPlanSyncRespectsOpenGate(t *testing.T) {
	layout := mustLayout(t, "G8V")
	existing := []Tile{
		{ID: "r0c0", Row: 0, Col: 0, Region: EmberPeaks, Feature: FeatureGate, Level: 1, Progress: 90},
		{ID: "r0c1", Row: 0, Col: 1, Region: GreatDepths},
		{ID: "r0c2", Row: 0, Col: 2, Region: GreatDepths, Feature: FeatureVoid, Locked: true},
	}
	if plan := PlanSync(existing, layout); !plan.Empty() {
		t.Fatalf("opened depths must stay open, got %+v", plan)
	}
}

func TestPlanSyncDeletesOutOfBounds(t *testing.T) {
	layout := mustLayout(t, "00")
	existing := []Tile{
		{ID: "r0c0", Row: 0, Col: 0, Region: Heartlands},
		{ID: "r0c1", Row: 0, Col: 1, Region: Heartlands},
		{ID: "r0c2", Row: 0, Col: 2, Region: Heartlands, Level: 1, Progress: 60},
		{ID: "legacy-7", Row: 0, Col: 0, Region: Heartlands},
	}
	plan := PlanSync(existing, layout)
	if len(plan.Delete) != 2 || plan.Delete[0] != "legacy-7" || plan.Delete[1] != "r0c2" {
		t.Fatalf("unexpected deletes %v", plan.Delete)
	}
	after := ApplySyncPlan(existing, plan)
	if len(after) != 2 {
		t.Fatalf("expected 2 tiles after sync, got %d", len(after))
	}
}

func TestPlanSeed(t *testing.T) {
	layout := mustLayout(t, "000", "0S0", "000")
	tiles := layout.Tiles()

	seed, ok := PlanSeed(tiles, layout.StartID)
	if !ok {
		t.Fatalf("expected a seed")
	}
	if seed.ID != "r1c1" || seed.Level != 1 || seed.Progress != 60 {
		t.Fatalf("unexpected seed %+v", seed)
	}

	tiles[4] = seed
	if _, ok := PlanSeed(tiles, layout.StartID); ok {
		t.Fatalf("a conquered world must not be seeded again")
	}
}

func TestPlanSyncInsertsOpenDepthsAfterGate(t *testing.T) {
	layout := mustLayout(t, "SG8", "88V")
	existing := []Tile{
		{ID: "r0c0", Row: 0, Col: 0, Region: Heartlands, Level: 1, Progress: 60},
		{ID: "r0c1", Row: 0, Col: 1, Region: EmberPeaks, Feature: FeatureGate, Level: 1, Progress: 90},
		{ID: "r0c2", Row: 0, Col: 2, Region: GreatDepths},
	}

	plan := PlanSync(existing, layout)
	if len(plan.Insert) != 3 {
		t.Fatalf("expected three inserts, got %+v", plan)
	}
	for _, tile := range plan.Insert {
		wantLocked := tile.Feature == FeatureVoid
		if tile.Locked != wantLocked {
			t.Errorf("%s locked = %v, want %v", tile.ID, tile.Locked, wantLocked)
		}
	}
}

func TestPlanSyncInsertsSealedDepthsBeforeGate(t *testing.T) {
	layout := mustLayout(t, "SG", "88")
	existing := []Tile{
		{ID: "r0c0", Row: 0, Col: 0, Region: Heartlands, Level: 1, Progress: 60},
		{ID: "r0c1", Row: 0, Col: 1, Region: EmberPeaks, Feature: FeatureGate},
	}
	for _, tile := range PlanSync(existing, layout).Insert {
		if !tile.Locked {
			t.Errorf("%s must stay sealed while the gate is closed", tile.ID)
		}
	}
}
