package audio

import (
	"math"
	"sync/atomic"

	"github.com/blindsight/echonav/core"
)

// Channel is one named mixer input: a voice plus live parameters.
// The tick thread writes volume/pan/frequency as independent atomic
// scalars; the render thread reads them once per buffer. A torn read
// across fields holds for at most one buffer and is inaudible.
type Channel struct {
	id   string
	kind core.CueKind

	voice Voice

	volume atomic.Uint64 // math.Float64bits
	pan    atomic.Uint64 // [-1, 1]
	freq   atomic.Uint64 // Hz

	removed   atomic.Bool // Streamer returns false next callback
	retrigger atomic.Bool // Voice.Reset requested from tick thread

	// Render-thread-only state
	delay     int // Stagger frames remaining before first sample
	voiceDone bool
	mono      []float64

	master *atomic.Uint64 // Engine master volume
	muted  *atomic.Bool   // Engine mute flag
}

func newChannel(id string, kind core.CueKind, voice Voice, delay int, master *atomic.Uint64, muted *atomic.Bool) *Channel {
	ch := &Channel{
		id:     id,
		kind:   kind,
		voice:  voice,
		delay:  delay,
		master: master,
		muted:  muted,
	}
	ch.volume.Store(math.Float64bits(1.0))
	ch.freq.Store(math.Float64bits(440.0))
	return ch
}

// ID returns the channel name
func (ch *Channel) ID() string { return ch.id }

// Kind returns the cue category this channel sonifies
func (ch *Channel) Kind() core.CueKind { return ch.kind }

// Voice exposes the synthesizer for recipe-level writes (beep interval,
// pattern); those use their own atomics
func (ch *Channel) Voice() Voice { return ch.voice }

// SetVolume writes channel gain in [0,1]; out-of-range values clamp
func (ch *Channel) SetVolume(v float64) {
	ch.volume.Store(math.Float64bits(clampUnit(v)))
}

// SetPan writes stereo position in [-1,1]
func (ch *Channel) SetPan(p float64) {
	if p < -1 {
		p = -1
	} else if p > 1 {
		p = 1
	}
	ch.pan.Store(math.Float64bits(p))
}

// SetFrequency writes the base frequency; negatives clamp to zero
func (ch *Channel) SetFrequency(hz float64) {
	if hz < 0 || math.IsNaN(hz) {
		hz = 0
	}
	ch.freq.Store(math.Float64bits(hz))
}

// Volume returns the current channel gain
func (ch *Channel) Volume() float64 {
	return math.Float64frombits(ch.volume.Load())
}

// Pan returns the current stereo position
func (ch *Channel) Pan() float64 {
	return math.Float64frombits(ch.pan.Load())
}

// Frequency returns the current base frequency
func (ch *Channel) Frequency() float64 {
	return math.Float64frombits(ch.freq.Load())
}

// SetParams writes all three live parameters
func (ch *Channel) SetParams(volume, pan, freqHz float64) {
	ch.SetVolume(volume)
	ch.SetPan(pan)
	ch.SetFrequency(freqHz)
}

// Retrigger rearms a finished one-shot voice from the tick thread; the
// actual Reset runs at the top of the next render callback
func (ch *Channel) Retrigger() {
	ch.retrigger.Store(true)
}

// Stream implements beep.Streamer. Returning false removes the channel
// from the mixer bus, so a removed channel is silent within one buffer.
func (ch *Channel) Stream(samples [][2]float64) (int, bool) {
	if ch.removed.Load() {
		return 0, false
	}

	n := len(samples)
	if cap(ch.mono) < n {
		ch.mono = make([]float64, n)
	}
	mono := ch.mono[:n]

	if ch.retrigger.CompareAndSwap(true, false) {
		ch.voice.Reset()
		ch.voiceDone = false
	}

	i := 0
	for ; i < n && ch.delay > 0; i++ {
		samples[i] = [2]float64{}
		ch.delay--
	}

	if ch.voiceDone || ch.muted.Load() {
		for ; i < n; i++ {
			samples[i] = [2]float64{}
		}
		return n, true
	}

	vol := math.Float64frombits(ch.volume.Load()) * math.Float64frombits(ch.master.Load())
	pan := math.Float64frombits(ch.pan.Load())
	freq := math.Float64frombits(ch.freq.Load())

	rendered := ch.voice.Render(mono[:n-i], freq)
	if rendered < n-i {
		ch.voiceDone = true
	}

	left, right := panGains(pan)
	for j := 0; j < rendered; j++ {
		s := mono[j] * vol
		samples[i+j][0] = s * left
		samples[i+j][1] = s * right
	}
	for k := i + rendered; k < n; k++ {
		samples[k] = [2]float64{}
	}
	return n, true
}

// Err implements beep.Streamer; channels never fail
func (ch *Channel) Err() error { return nil }

// panGains converts pan position to per-side gain, constant-power
func panGains(pan float64) (left, right float64) {
	// pan -1 → full left, +1 → full right
	angle := (pan + 1) * math.Pi / 4
	return math.Cos(angle), math.Sin(angle)
}

func clampUnit(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
