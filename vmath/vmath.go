package vmath

// Scalar helpers shared by the spatializer and guidance curves

// Clamp limits x to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Clamp01 limits x to [0, 1]
func Clamp01(x float64) float64 {
	return Clamp(x, 0, 1)
}

// Lerp interpolates linearly from a to b by t in [0,1]
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// InvLerp maps x in [a,b] to [0,1], clamped
// Returns 0 when the range is degenerate
func InvLerp(a, b, x float64) float64 {
	if a == b {
		return 0
	}
	return Clamp01((x - a) / (b - a))
}

// Remap maps x from [inLo,inHi] to [outLo,outHi], clamped to the output range
func Remap(x, inLo, inHi, outLo, outHi float64) float64 {
	return Lerp(outLo, outHi, InvLerp(inLo, inHi, x))
}
