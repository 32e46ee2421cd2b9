package audio

import (
	"math"
	"math/rand"

	"github.com/blindsight/echonav/constant"
)

// WaveKind selects the oscillator shape for a cue recipe
type WaveKind int

const (
	WaveSine WaveKind = iota
	WaveTriangle
	WaveSquareSub // Square with a sub-octave square underneath
	WaveSiren     // Sine with noise bleed, for hazard sirens
)

// osc is a phase-accumulating oscillator; phase persists across buffers
type osc struct {
	phase    float64 // [0, 1)
	subPhase float64 // Half-rate phase for WaveSquareSub
	kind     WaveKind
}

// next produces one sample at freqHz and advances phase
func (o *osc) next(freqHz float64) float64 {
	if freqHz < 0 {
		freqHz = 0
	}
	inc := freqHz / float64(constant.AudioSampleRate)

	var val float64
	switch o.kind {
	case WaveSine:
		val = math.Sin(2 * math.Pi * o.phase)
	case WaveTriangle:
		val = 2.0*math.Abs(2.0*(o.phase-0.5)) - 1.0
	case WaveSquareSub:
		if o.phase < 0.5 {
			val = 1.0
		} else {
			val = -1.0
		}
		if o.subPhase < 0.5 {
			val += 0.5
		} else {
			val -= 0.5
		}
		val *= 0.6 // Headroom for the stacked octaves
	case WaveSiren:
		val = 0.8*math.Sin(2*math.Pi*o.phase) + 0.2*(rand.Float64()*2-1)
	}

	o.phase += inc
	o.phase -= math.Floor(o.phase)
	o.subPhase += inc * 0.5
	o.subPhase -= math.Floor(o.subPhase)
	return val
}

func (o *osc) reset() {
	o.phase = 0
	o.subPhase = 0
}

// lfo is a low-frequency sine oscillator for vibrato/tremolo
type lfo struct {
	rateHz float64
	depth  float64 // 0 disables
	phase  float64
}

// next returns the modulation value in [-depth, depth]
func (l *lfo) next() float64 {
	if l.depth == 0 {
		return 0
	}
	v := math.Sin(2*math.Pi*l.phase) * l.depth
	l.phase += l.rateHz / float64(constant.AudioSampleRate)
	l.phase -= math.Floor(l.phase)
	return v
}

// envelope is a multiplicative attack/decay gain curve sampled by
// elapsed-since-trigger frames
type envelope struct {
	attack int // Frames
	decay  int // Frames
}

func envFrames(attackSec, decaySec float64) envelope {
	return envelope{
		attack: int(attackSec * constant.AudioSampleRate),
		decay:  int(decaySec * constant.AudioSampleRate),
	}
}

// length is the total frames of one envelope pass
func (e envelope) length() int {
	return e.attack + e.decay
}

// gain at the given elapsed frame; 0 after the envelope completes
func (e envelope) gain(elapsed int) float64 {
	if elapsed < 0 {
		return 0
	}
	if elapsed < e.attack {
		return float64(elapsed) / float64(e.attack)
	}
	elapsed -= e.attack
	if elapsed < e.decay {
		return 1.0 - float64(elapsed)/float64(e.decay)
	}
	return 0
}
