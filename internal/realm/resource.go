package realm

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

type Activity string

const (
	ActivityWork        Activity = "work"
	ActivityStudy       Activity = "study"
	ActivitySport       Activity = "sport"
	ActivityMindfulness Activity = "mindfulness"
	ActivityIncome      Activity = "income"
	ActivityHabit       Activity = "habit"
)

var knownActivities = []Activity{
	ActivityWork, ActivityStudy, ActivitySport, ActivityMindfulness, ActivityIncome, ActivityHabit,
}

var legacyActivities = map[string]Activity{
	"exercise":   ActivitySport,
	"fitness":    ActivitySport,
	"meditation": ActivityMindfulness,
	"reading":    ActivityStudy,
	"learning":   ActivityStudy,
	"job":        ActivityWork,
	"coding":     ActivityWork,
	"salary":     ActivityIncome,
}

// LegacyActivities returns the alias table NormalizeActivity applies, keyed
// by the retired name.
func LegacyActivities() map[string]Activity {
	out := make(map[string]Activity, len(legacyActivities))
	for k, v := range legacyActivities {
		out[k] = v
	}
	return out
}

type ResourceKey string

const (
	ResourceCraft   ResourceKey = "craft"
	ResourceLore    ResourceKey = "lore"
	ResourceVigor   ResourceKey = "vigor"
	ResourceClarity ResourceKey = "clarity"
	ResourceGold    ResourceKey = "gold"
)

var resourceActivity = map[ResourceKey]Activity{
	ResourceCraft:   ActivityWork,
	ResourceLore:    ActivityStudy,
	ResourceVigor:   ActivitySport,
	ResourceClarity: ActivityMindfulness,
}

var activityResource = map[Activity]ResourceKey{
	ActivityWork:        ResourceCraft,
	ActivityStudy:       ResourceLore,
	ActivitySport:       ResourceVigor,
	ActivityMindfulness: ResourceClarity,
	ActivityIncome:      ResourceGold,
}

func Activities() []Activity {
	out := make([]Activity, len(knownActivities))
	copy(out, knownActivities)
	return out
}

// NormalizeActivity lowercases the name and maps legacy aliases. Unknown
// names are returned lowercased so callers can reject them.
func NormalizeActivity(raw string) Activity {
	key := strings.ToLower(strings.TrimSpace(raw))
	if a, ok := legacyActivities[key]; ok {
		return a
	}
	return Activity(key)
}

func (a Activity) Known() bool {
	for _, k := range knownActivities {
		if a == k {
			return true
		}
	}
	return false
}

// IsCore reports whether the activity is time based and grants XP.
func (a Activity) IsCore() bool {
	switch a {
	case ActivityWork, ActivityStudy, ActivitySport, ActivityMindfulness:
		return true
	}
	return false
}

type Reward struct {
	Resource ResourceKey
	Amount   int
	XP       int
}

func (r Reward) Empty() bool {
	return r.Resource == "" && r.XP == 0
}

// RewardFor computes what a logged entry grants. Core activities map minutes
// 1:1 to their resource and to XP, income maps amount to gold, anything else
// grants nothing.
func RewardFor(activity Activity, minutes, amount int) Reward {
	activity = NormalizeActivity(string(activity))
	switch {
	case activity.IsCore():
		if minutes <= 0 {
			return Reward{}
		}
		return Reward{Resource: activityResource[activity], Amount: minutes, XP: minutes}
	case activity == ActivityIncome:
		if amount <= 0 {
			return Reward{}
		}
		return Reward{Resource: ResourceGold, Amount: amount}
	}
	return Reward{}
}

func ParseResource(raw string) (ResourceKey, bool) {
	key := ResourceKey(strings.ToLower(strings.TrimSpace(raw)))
	switch key {
	case ResourceCraft, ResourceLore, ResourceVigor, ResourceClarity, ResourceGold:
		return key, true
	}
	return "", false
}

// ActivityForResource returns the activity a pool was earned by. Only the
// four core pools are investable in tiles.
func ActivityForResource(key ResourceKey) (Activity, bool) {
	a, ok := resourceActivity[key]
	return a, ok
}

// SuggestActivities returns known activity names close to raw, best first.
func SuggestActivities(raw string) []string {
	source := make([]string, 0, len(knownActivities)+len(legacyActivities))
	for _, a := range knownActivities {
		source = append(source, string(a))
	}
	for alias := range legacyActivities {
		source = append(source, alias)
	}
	matches := fuzzy.Find(strings.ToLower(strings.TrimSpace(raw)), source)
	seen := make(map[string]struct{})
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		name := string(NormalizeActivity(m.Str))
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
