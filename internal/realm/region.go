package realm

import "strings"

type RegionID string

const (
	Heartlands     RegionID = "heartlands"
	ForgeHills     RegionID = "forge_hills"
	ScholarWoods   RegionID = "scholar_woods"
	TrainingPlains RegionID = "training_plains"
	StillLakes     RegionID = "still_lakes"
	EmberPeaks     RegionID = "ember_peaks"
	MistMarsh      RegionID = "mist_marsh"
	JailorReach    RegionID = "jailor_reach"
	GreatDepths    RegionID = "great_depths"
	VoidHeart      RegionID = "void_heart"
)

// StartRegion holds the fallback start anchor when no designated start tile
// is usable. GatedRegion is sealed until a gate tile is conquered.
const (
	StartRegion = Heartlands
	GatedRegion = GreatDepths
)

type Region struct {
	ID                RegionID
	Name              string
	Glyph             rune
	Tier              int
	Multiplier        float64
	AllowedActivities []Activity
	DefaultLocked     bool
}

var coreActivities = []Activity{ActivityWork, ActivityStudy, ActivitySport, ActivityMindfulness}

// regions is ordered by layout digit: '0' is regions[0].
var regions = []Region{
	{ID: Heartlands, Name: "Heartlands", Glyph: 'h', Tier: 1, Multiplier: 1.0, AllowedActivities: coreActivities},
	{ID: ForgeHills, Name: "Forge Hills", Glyph: 'f', Tier: 2, Multiplier: 1.2, AllowedActivities: []Activity{ActivityWork}},
	{ID: ScholarWoods, Name: "Scholar Woods", Glyph: 'w', Tier: 2, Multiplier: 1.2, AllowedActivities: []Activity{ActivityStudy}},
	{ID: TrainingPlains, Name: "Training Plains", Glyph: 'p', Tier: 2, Multiplier: 1.2, AllowedActivities: []Activity{ActivitySport}},
	{ID: StillLakes, Name: "Still Lakes", Glyph: 'l', Tier: 2, Multiplier: 1.2, AllowedActivities: []Activity{ActivityMindfulness}},
	{ID: EmberPeaks, Name: "Ember Peaks", Glyph: 'e', Tier: 3, Multiplier: 1.5, AllowedActivities: []Activity{ActivityWork, ActivitySport}},
	{ID: MistMarsh, Name: "Mist Marsh", Glyph: 'm', Tier: 3, Multiplier: 1.5, AllowedActivities: []Activity{ActivityStudy, ActivityMindfulness}},
	{ID: JailorReach, Name: "Jailor's Reach", Glyph: 'j', Tier: 4, Multiplier: 1.8, AllowedActivities: coreActivities},
	{ID: GreatDepths, Name: "Great Depths", Glyph: 'd', Tier: 5, Multiplier: 2.0, AllowedActivities: coreActivities, DefaultLocked: true},
	{ID: VoidHeart, Name: "Void Heart", Glyph: 'v', Tier: 9, Multiplier: 3.0, DefaultLocked: true},
}

var regionIndex = func() map[RegionID]*Region {
	idx := make(map[RegionID]*Region, len(regions))
	for i := range regions {
		idx[regions[i].ID] = &regions[i]
	}
	return idx
}()

// legacyRegions maps ids written by older builds to their current region.
var legacyRegions = map[string]RegionID{
	"meadow": Heartlands,
	"depths": GreatDepths,
	"abyss":  VoidHeart,
}

func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

func LookupRegion(id RegionID) (Region, bool) {
	r, ok := regionIndex[id]
	if !ok {
		return Region{}, false
	}
	return *r, true
}

// NormalizeRegion resolves a stored region id, remapping legacy names.
func NormalizeRegion(raw string) (RegionID, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := regionIndex[RegionID(key)]; ok {
		return RegionID(key), true
	}
	if id, ok := legacyRegions[key]; ok {
		return id, true
	}
	return "", false
}

func (id RegionID) Tier() int {
	if r, ok := regionIndex[id]; ok {
		return r.Tier
	}
	return 1 << 10
}

func (id RegionID) Multiplier() float64 {
	if r, ok := regionIndex[id]; ok {
		return r.Multiplier
	}
	return 1.0
}

func (id RegionID) DefaultLocked() bool {
	if r, ok := regionIndex[id]; ok {
		return r.DefaultLocked
	}
	return false
}

func (id RegionID) Allows(activity Activity) bool {
	r, ok := regionIndex[id]
	if !ok {
		return false
	}
	for _, a := range r.AllowedActivities {
		if a == activity {
			return true
		}
	}
	return false
}
