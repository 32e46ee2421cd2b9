package spatial

import (
	"math"

	"github.com/blindsight/echonav/core"
	"github.com/blindsight/echonav/vmath"
)

// Discretized 8-direction spatialization for cues computed from a
// bucketed angle rather than a continuous one. Bucket index counts
// sectors away from forward: 0 forward, 4 directly behind, with
// symmetric values on both flanks.

const dirBuckets = 8

// dirPitchMul is indexed by sectors-from-forward (0..4)
var dirPitchMul = [5]float64{1.0, 0.92, 0.8, 0.7, 0.6}

// dirPan is indexed by sectors-from-forward; sign follows the flank
var dirPan = [5]float64{0, 0.5, 1.0, 0.5, 0}

// DirectionBucket returns sectors-from-forward (0..4) and the flank
// sign (-1 left, +1 right, 0 on the forward/behind axis)
func DirectionBucket(pose core.Pose, target vmath.Vec3F) (sector int, side int) {
	to := vmath.V3FFlat(vmath.V3FSub(target, pose.Position))
	if to == (vmath.Vec3F{}) {
		return 0, 0
	}
	forward := vmath.V3FNormalize(vmath.V3FFlat(pose.Forward))
	right := vmath.Vec3F{X: forward.Z, Z: -forward.X}

	angle := math.Atan2(vmath.V3FDot(to, right), vmath.V3FDot(to, forward))

	// Each sector spans 45°, centered on its direction
	bucket := int(math.Round(angle/(2*math.Pi/dirBuckets)))
	if bucket < 0 {
		bucket = -bucket
		if bucket == dirBuckets/2 {
			return bucket, 0
		}
		return bucket, -1
	}
	if bucket == 0 || bucket == dirBuckets/2 {
		return bucket, 0
	}
	return bucket, 1
}

// ComputeBucketed spatializes via the 8-direction lookup table
func ComputeBucketed(pose core.Pose, target vmath.Vec3F, maxRange float64) Result {
	sector, side := DirectionBucket(pose, target)
	dist := vmath.V3FDist(vmath.V3FFlat(pose.Position), vmath.V3FFlat(target))

	return Result{
		Pan:         dirPan[sector] * float64(side),
		PitchMul:    dirPitchMul[sector],
		Proximity01: proximity(dist, maxRange),
	}
}
