// Package spatial converts listener/target geometry into stereo pan,
// pitch shift, and normalized proximity. Pure functions, no state.
package spatial

import (
	"math"

	"github.com/blindsight/echonav/constant"
	"github.com/blindsight/echonav/core"
	"github.com/blindsight/echonav/vmath"
)

// Result holds one spatialization sample for a target
type Result struct {
	Pan         float64 // [-1,1], right positive
	PitchMul    float64 // Forward ≈ max, behind ≈ min
	Proximity01 float64 // 1 at the listener, 0 at max range
}

// PitchRange remaps the forward-cosine into a frequency multiplier band
type PitchRange struct {
	Min float64
	Max float64
}

// DefaultPitch is the band for most cues
var DefaultPitch = PitchRange{Min: constant.PitchMulMin, Max: constant.PitchMulMax}

// BeaconPitch widens the band so forward/behind is unambiguous on
// primary navigation beacons
var BeaconPitch = PitchRange{Min: constant.BeaconPitchMulMin, Max: constant.PitchMulMax}

// Compute spatializes target relative to the listener pose.
// Pan is the target direction projected onto the listener's right axis;
// pitch is the forward-cosine remapped into the given range; proximity
// is 1 - clamp(distance/maxRange, 0, 1).
func Compute(pose core.Pose, target vmath.Vec3F, maxRange float64, pitch PitchRange) Result {
	to := vmath.V3FFlat(vmath.V3FSub(target, pose.Position))
	dist := vmath.V3FMag(to)

	res := Result{
		PitchMul:    pitch.Max,
		Proximity01: proximity(dist, maxRange),
	}
	if dist == 0 {
		return res
	}

	dir := vmath.V3FScale(to, 1.0/dist)
	forward := vmath.V3FNormalize(vmath.V3FFlat(pose.Forward))

	// Right axis: up × forward with Y up
	right := vmath.Vec3F{X: forward.Z, Z: -forward.X}

	res.Pan = vmath.Clamp(vmath.V3FDot(dir, right), -1, 1)

	cos := vmath.Clamp(vmath.V3FDot(dir, forward), -1, 1)
	res.PitchMul = vmath.Remap(cos, -1, 1, pitch.Min, pitch.Max)
	return res
}

func proximity(dist, maxRange float64) float64 {
	if maxRange <= 0 {
		return 0
	}
	return 1 - vmath.Clamp01(dist/maxRange)
}

// InRange reports whether the target is inside the cue's active range
func InRange(listener, target vmath.Vec3F, maxRange float64) bool {
	return vmath.V3FDist(listener, target) <= maxRange
}

// AngleTo returns the horizontal angle in radians between the listener
// forward and the target direction, in [0, π]
func AngleTo(pose core.Pose, target vmath.Vec3F) float64 {
	to := vmath.V3FNormalize(vmath.V3FFlat(vmath.V3FSub(target, pose.Position)))
	forward := vmath.V3FNormalize(vmath.V3FFlat(pose.Forward))
	if to == (vmath.Vec3F{}) || forward == (vmath.Vec3F{}) {
		return 0
	}
	cos := vmath.Clamp(vmath.V3FDot(to, forward), -1, 1)
	return math.Acos(cos)
}
