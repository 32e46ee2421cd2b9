package audio

import (
	"sync/atomic"

	"github.com/blindsight/echonav/constant"
)

// Voice generates mono samples for one channel. Render and Reset run on
// the render thread only; atomic setters are the tick-thread interface.
type Voice interface {
	// Render fills dst at the given base frequency and returns frames
	// written. Fewer than len(dst) means the voice completed a one-shot
	// and self-mutes; the owning channel keeps producing silence.
	Render(dst []float64, freqHz float64) int

	// Reset rearms the voice from its initial state
	Reset()
}

// --- ToneVoice: continuous tone with optional vibrato/tremolo ---

// ToneVoice sustains until its channel is removed
type ToneVoice struct {
	osc  osc
	vib  lfo // Frequency modulation, fractional depth
	trem lfo // Amplitude modulation
}

// NewToneVoice creates a continuous tone of the given shape
func NewToneVoice(kind WaveKind) *ToneVoice {
	return &ToneVoice{osc: osc{kind: kind}}
}

// WithVibrato adds frequency wobble: depth is fractional (0.02 = ±2%)
func (v *ToneVoice) WithVibrato(rateHz, depth float64) *ToneVoice {
	v.vib = lfo{rateHz: rateHz, depth: depth}
	return v
}

// WithTremolo adds amplitude wobble
func (v *ToneVoice) WithTremolo(rateHz, depth float64) *ToneVoice {
	v.trem = lfo{rateHz: rateHz, depth: depth}
	return v
}

func (v *ToneVoice) Render(dst []float64, freqHz float64) int {
	for i := range dst {
		f := freqHz * (1.0 + v.vib.next())
		s := v.osc.next(f)
		s *= 1.0 - (v.trem.next()+v.trem.depth)/2 // Tremolo dips below unity only
		dst[i] = s
	}
	return len(dst)
}

func (v *ToneVoice) Reset() {
	v.osc.reset()
	v.vib.phase = 0
	v.trem.phase = 0
}

// --- BeepVoice: repeating enveloped beeps with a live interval ---

// BeepPattern selects the critical-proximity beep shape
type BeepPattern int

const (
	PatternSingle BeepPattern = iota
	PatternDouble // "dit-DIT": short beep, gap, accented beep
)

// BeepVoice repeats an enveloped beep; the interval between triggers is
// written by the tick thread as guidance distance changes
type BeepVoice struct {
	osc osc
	env envelope

	interval atomic.Int64 // Frames between beep starts
	pattern  atomic.Int64 // BeepPattern

	cyclePos int
}

// NewBeepVoice creates a repeating beep with the given envelope
func NewBeepVoice(kind WaveKind, attackSec, decaySec float64) *BeepVoice {
	v := &BeepVoice{
		osc: osc{kind: kind},
		env: envFrames(attackSec, decaySec),
	}
	v.interval.Store(int64(constant.AudioSampleRate / 4)) // 250ms default
	return v
}

// SetInterval updates frames between beep starts. Clamped so retriggering
// never outruns envelope decay.
func (v *BeepVoice) SetInterval(frames int) {
	if min := v.env.length(); frames < min {
		frames = min
	}
	v.interval.Store(int64(frames))
}

// Interval returns the current frames between beep starts
func (v *BeepVoice) Interval() int {
	return int(v.interval.Load())
}

// SetPattern switches between single and double beeps
func (v *BeepVoice) SetPattern(p BeepPattern) {
	v.pattern.Store(int64(p))
}

// Pattern returns the active beep pattern
func (v *BeepVoice) Pattern() BeepPattern {
	return BeepPattern(v.pattern.Load())
}

func (v *BeepVoice) Render(dst []float64, freqHz float64) int {
	interval := int(v.interval.Load())
	pattern := BeepPattern(v.pattern.Load())
	beepLen := v.env.length()

	cycle := interval
	if pattern == PatternDouble {
		// Second beep starts half an envelope after the first ends
		if min := beepLen*2 + beepLen/2; cycle < min {
			cycle = min
		}
	}

	for i := range dst {
		var s float64
		switch {
		case v.cyclePos < beepLen:
			s = v.osc.next(freqHz) * v.env.gain(v.cyclePos)
		case pattern == PatternDouble && v.cyclePos >= beepLen+beepLen/2 && v.cyclePos < beepLen*2+beepLen/2:
			// Accented second beep, a fifth up
			s = v.osc.next(freqHz*1.5) * v.env.gain(v.cyclePos-beepLen-beepLen/2) * 1.2
		default:
			v.osc.reset()
		}
		dst[i] = s

		v.cyclePos++
		if v.cyclePos >= cycle {
			v.cyclePos = 0
		}
	}
	return len(dst)
}

func (v *BeepVoice) Reset() {
	v.osc.reset()
	v.cyclePos = 0
}

// --- SweepVoice: linear frequency interpolation over a fixed duration ---

// SweepVoice glides from startHz to endHz over the sweep duration, then
// loops (continuous chirps) or self-mutes (one-shot descents)
type SweepVoice struct {
	osc      osc
	startHz  float64
	endHz    float64
	duration int // Frames
	loop     bool

	pos  int
	done bool
}

// NewSweepVoice creates a linear frequency sweep
func NewSweepVoice(kind WaveKind, startHz, endHz, durationSec float64, loop bool) *SweepVoice {
	return &SweepVoice{
		osc:      osc{kind: kind},
		startHz:  startHz,
		endHz:    endHz,
		duration: int(durationSec * constant.AudioSampleRate),
		loop:     loop,
	}
}

func (v *SweepVoice) Render(dst []float64, freqHz float64) int {
	if v.done {
		return 0
	}

	// The channel frequency scales the whole sweep band, so spatial
	// pitch shifts apply to chirps too
	scale := 1.0
	if v.startHz > 0 && freqHz > 0 {
		scale = freqHz / v.startHz
	}

	for i := range dst {
		if v.pos >= v.duration {
			if !v.loop {
				v.done = true
				return i
			}
			v.pos = 0
		}
		t := float64(v.pos) / float64(v.duration)
		f := (v.startHz + (v.endHz-v.startHz)*t) * scale
		dst[i] = v.osc.next(f)
		v.pos++
	}
	return len(dst)
}

func (v *SweepVoice) Reset() {
	v.osc.reset()
	v.pos = 0
	v.done = false
}
