package realm

import "testing"

func TestSegmentNeed(t *testing.T) {
	tests := []struct {
		name   string
		level  int
		region RegionID
		want   int
	}{
		{name: "heartlands level 0", level: 0, region: Heartlands, want: 60},
		{name: "heartlands level 1", level: 1, region: Heartlands, want: 120},
		{name: "heartlands level 2", level: 2, region: Heartlands, want: 180},
		{name: "forge hills level 0", level: 0, region: ForgeHills, want: 72},
		{name: "ember peaks level 1", level: 1, region: EmberPeaks, want: 180},
		{name: "great depths level 2", level: 2, region: GreatDepths, want: 360},
		{name: "negative level clamps", level: -3, region: Heartlands, want: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentNeed(tt.level, tt.region); got != tt.want {
				t.Errorf("SegmentNeed(%d, %s) = %d, want %d", tt.level, tt.region, got, tt.want)
			}
		})
	}
}

func TestTotalRequiredForLevel(t *testing.T) {
	want := []int{0, 60, 180, 360}
	for level, expected := range want {
		if got := TotalRequiredForLevel(level, Heartlands); got != expected {
			t.Errorf("TotalRequiredForLevel(%d) = %d, want %d", level, got, expected)
		}
	}
}

func TestCumulativeThresholdConsistency(t *testing.T) {
	for _, region := range Regions() {
		for level := 0; level < MaxLevel; level++ {
			next := TotalRequiredForLevel(level+1, region.ID)
			sum := TotalRequiredForLevel(level, region.ID) + SegmentNeed(level, region.ID)
			if next != sum {
				t.Fatalf("%s level %d: total %d != %d", region.ID, level, next, sum)
			}
			if SegmentNeed(level+1, region.ID) <= SegmentNeed(level, region.ID) {
				t.Fatalf("%s: segment need not strictly increasing at level %d", region.ID, level)
			}
		}
	}
}

func TestLevelFromProgress(t *testing.T) {
	tests := []struct {
		progress int
		want     int
	}{
		{0, 0}, {59, 0}, {60, 1}, {179, 1}, {180, 2}, {359, 2}, {360, 3}, {100000, 3},
	}
	for _, tt := range tests {
		if got := LevelFromProgress(tt.progress, Heartlands); got != tt.want {
			t.Errorf("LevelFromProgress(%d) = %d, want %d", tt.progress, got, tt.want)
		}
	}
}

func TestApplyMinutesBasicLeveling(t *testing.T) {
	tile := Tile{ID: "r0c0", Region: Heartlands}

	tile = ApplyMinutes(tile, 60)
	if tile.Level != 1 || tile.Progress != 60 {
		t.Fatalf("after 60 minutes: level=%d progress=%d, want 1/60", tile.Level, tile.Progress)
	}

	tile = ApplyMinutes(tile, 50)
	if tile.Level != 1 || tile.Progress != 110 {
		t.Fatalf("after 50 more minutes: level=%d progress=%d, want 1/110", tile.Level, tile.Progress)
	}
}

func TestApplyMinutesMonotonic(t *testing.T) {
	deltas := []int{0, 15, -40, 90, 0, 400, -1, 3}
	tile := Tile{Region: MistMarsh}
	prev := 0
	for _, d := range deltas {
		tile = ApplyMinutes(tile, d)
		if tile.Progress < prev {
			t.Fatalf("progress decreased from %d to %d after delta %d", prev, tile.Progress, d)
		}
		if tile.Level != LevelFromProgress(tile.Progress, tile.Region) {
			t.Fatalf("level %d diverged from progress %d", tile.Level, tile.Progress)
		}
		prev = tile.Progress
	}
}

func TestLevelSaturation(t *testing.T) {
	tile := ApplyMinutes(Tile{Region: Heartlands}, 1_000_000)
	if tile.Level != MaxLevel {
		t.Fatalf("expected level %d, got %d", MaxLevel, tile.Level)
	}
	if tile.Progress != 1_000_000 {
		t.Fatalf("progress should not be capped, got %d", tile.Progress)
	}
	if ratio := ProgressRatio(tile); ratio != 1.0 {
		t.Fatalf("expected ratio 1.0 at max level, got %v", ratio)
	}
	if left := MinutesToNextLevel(tile); left != 0 {
		t.Fatalf("expected no minutes left at max level, got %d", left)
	}
}

func TestProgressRatio(t *testing.T) {
	tests := []struct {
		name     string
		progress int
		want     float64
	}{
		{name: "empty", progress: 0, want: 0},
		{name: "half first segment", progress: 30, want: 0.5},
		{name: "start of second segment", progress: 60, want: 0},
		{name: "quarter second segment", progress: 90, want: 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := Tile{Region: Heartlands, Progress: tt.progress}
			if got := ProgressRatio(tile); got != tt.want {
				t.Errorf("ProgressRatio(%d) = %v, want %v", tt.progress, got, tt.want)
			}
		})
	}
}
