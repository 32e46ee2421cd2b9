package constant

import "time"

// Pathfinding
const (
	// PathRecalcInterval throttles nav-mesh path recomputation
	PathRecalcInterval = 400 * time.Millisecond

	// DirectRangeMeters disables pathfinding near the target; precision
	// beats obstacle avoidance at close range
	DirectRangeMeters = 8.0

	// MinWaypointDistance skips path corners the player already stands on
	MinWaypointDistance = 1.2

	// NavSampleRadius for snapping positions onto the mesh
	NavSampleRadius = 4.0
)

// Tracking
const (
	// EntityTimeoutTicks removes entities with no position update
	EntityTimeoutTicks = 300

	// NearestSelectionMax bounds SelectNearest result size
	NearestSelectionMax = 4
)

// Spatialization
const (
	// PitchMulMin/Max remap forward-cosine for most cues
	PitchMulMin = 0.6
	PitchMulMax = 1.0

	// BeaconPitchMulMin widens the range for primary navigation beacons
	// so forward/behind is unambiguous
	BeaconPitchMulMin = 0.4
)

// Announcements
const (
	AnnounceCooldownRoutine  = 8 * time.Second
	AnnounceCooldownProgress = 4 * time.Second
	AnnounceCooldownCombat   = 1500 * time.Millisecond
)
