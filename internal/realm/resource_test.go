package realm

import "testing"

func TestNormalizeActivity(t *testing.T) {
	tests := []struct {
		in   string
		want Activity
	}{
		{"work", ActivityWork},
		{" Study ", ActivityStudy},
		{"exercise", ActivitySport},
		{"Meditation", ActivityMindfulness},
		{"salary", ActivityIncome},
		{"juggling", Activity("juggling")},
	}
	for _, tt := range tests {
		got := NormalizeActivity(tt.in)
		if got != tt.want {
			t.Errorf("NormalizeActivity(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := NormalizeActivity(string(got)); again != got {
			t.Errorf("NormalizeActivity not idempotent for %q: %q -> %q", tt.in, got, again)
		}
	}
}

func TestRewardFor(t *testing.T) {
	tests := []struct {
		name     string
		activity Activity
		minutes  int
		amount   int
		want     Reward
	}{
		{name: "work", activity: ActivityWork, minutes: 45, want: Reward{Resource: ResourceCraft, Amount: 45, XP: 45}},
		{name: "study", activity: ActivityStudy, minutes: 30, want: Reward{Resource: ResourceLore, Amount: 30, XP: 30}},
		{name: "sport", activity: ActivitySport, minutes: 20, want: Reward{Resource: ResourceVigor, Amount: 20, XP: 20}},
		{name: "mindfulness", activity: ActivityMindfulness, minutes: 10, want: Reward{Resource: ResourceClarity, Amount: 10, XP: 10}},
		{name: "legacy alias", activity: "fitness", minutes: 5, want: Reward{Resource: ResourceVigor, Amount: 5, XP: 5}},
		{name: "income", activity: ActivityIncome, amount: 120, want: Reward{Resource: ResourceGold, Amount: 120}},
		{name: "income ignores minutes", activity: ActivityIncome, minutes: 60, want: Reward{}},
		{name: "habit", activity: ActivityHabit, minutes: 15, want: Reward{}},
		{name: "unknown", activity: "juggling", minutes: 15, want: Reward{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RewardFor(tt.activity, tt.minutes, tt.amount); got != tt.want {
				t.Errorf("RewardFor = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestActivityForResource(t *testing.T) {
	if a, ok := ActivityForResource(ResourceLore); !ok || a != ActivityStudy {
		t.Fatalf("lore should map to study, got %q", a)
	}
	if _, ok := ActivityForResource(ResourceGold); ok {
		t.Fatalf("gold must not be investable")
	}
}

func TestPlayerWithDelta(t *testing.T) {
	p := Player{Lore: 10}
	p = p.WithDelta(ResourceLore, -25)
	if p.Lore != 0 {
		t.Fatalf("pools must not go negative, got %d", p.Lore)
	}
	p = p.WithDelta(ResourceGold, 7)
	if p.Pool(ResourceGold) != 7 {
		t.Fatalf("expected 7 gold, got %d", p.Gold)
	}
}

func TestSuggestActivities(t *testing.T) {
	got := SuggestActivities("medit")
	if len(got) == 0 || got[0] != string(ActivityMindfulness) {
		t.Fatalf("expected mindfulness suggestion, got %v", got)
	}
}
