package core

// CueKind identifies one logical audio signal type
type CueKind int

const (
	CueWallForward CueKind = iota // Forward wall proximity tick
	CueEnemyNormal                // Standard enemy contact
	CueEnemyElite                 // Elite enemy contact
	CueEnemyBoss                  // Boss contact, descending pitch
	CueDropPod                    // Extraction pod beacon
	CueSupplyPod                  // Supply pod beacon
	CueHazard                     // Environmental hazard warning
	CueCollectible                // Collectible ping
	CueDrill                      // Drill objective beacon
	CueKindCount
)

var cueKindNames = [CueKindCount]string{
	"wall_forward",
	"enemy_normal",
	"enemy_elite",
	"enemy_boss",
	"drop_pod",
	"supply_pod",
	"hazard",
	"collectible",
	"drill",
}

func (k CueKind) String() string {
	if k < 0 || k >= CueKindCount {
		return "unknown"
	}
	return cueKindNames[k]
}

// CueKindFromName resolves a profile-table key back to a kind
// Returns CueKindCount for unknown names
func CueKindFromName(name string) CueKind {
	for k, n := range cueKindNames {
		if n == name {
			return CueKind(k)
		}
	}
	return CueKindCount
}

// EntityCategory classifies tracked world entities
type EntityCategory int

const (
	CategoryEnemyNormal EntityCategory = iota
	CategoryEnemyElite
	CategoryEnemyBoss
	CategoryEnemySwarm // Filler subtype, excluded from audio selection
	CategoryHazard
	CategoryCollectible
	CategoryCount
)

var categoryNames = [CategoryCount]string{
	"enemy_normal",
	"enemy_elite",
	"enemy_boss",
	"enemy_swarm",
	"hazard",
	"collectible",
}

func (c EntityCategory) String() string {
	if c < 0 || c >= CategoryCount {
		return "unknown"
	}
	return categoryNames[c]
}

// Cue resolves the audio cue kind driven by this category
// Swarm enemies share the normal cue when sonified at all
func (c EntityCategory) Cue() CueKind {
	switch c {
	case CategoryEnemyNormal, CategoryEnemySwarm:
		return CueEnemyNormal
	case CategoryEnemyElite:
		return CueEnemyElite
	case CategoryEnemyBoss:
		return CueEnemyBoss
	case CategoryHazard:
		return CueHazard
	case CategoryCollectible:
		return CueCollectible
	}
	return CueKindCount
}

// BeaconKind identifies a guidance target type
type BeaconKind int

const (
	BeaconDropPod BeaconKind = iota
	BeaconSupplyPod
	BeaconDrill
	BeaconKindCount
)

func (b BeaconKind) String() string {
	switch b {
	case BeaconDropPod:
		return "drop_pod"
	case BeaconSupplyPod:
		return "supply_pod"
	case BeaconDrill:
		return "drill"
	}
	return "unknown"
}

// Cue maps the beacon target to its cue kind
func (b BeaconKind) Cue() CueKind {
	switch b {
	case BeaconDropPod:
		return CueDropPod
	case BeaconSupplyPod:
		return CueSupplyPod
	case BeaconDrill:
		return CueDrill
	}
	return CueKindCount
}
