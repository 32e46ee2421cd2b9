package audio

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/blindsight/echonav/constant"
	"github.com/blindsight/echonav/core"
)

// ErrChannelCap is returned when the mixer slot ceiling is reached
var ErrChannelCap = fmt.Errorf("audio: channel ceiling reached")

// Engine owns the single shared output sink and the mixer bus that all
// cue channels feed. Opening one native device per cue serializes and
// stalls once a few dozen handles exist, so everything multiplexes here.
//
// A failed device open degrades the engine to silent mode: channels are
// still created and parameterized so guidance logic runs unchanged, and
// the device is retried lazily on Tick.
type Engine struct {
	log zerolog.Logger
	cfg *Config

	mixer *beep.Mixer

	master atomic.Uint64 // math.Float64bits master volume
	muted  atomic.Bool

	mu          sync.Mutex // Tick-thread structures below
	channels    map[string]*Channel
	slot        int // Rotates the trigger stagger
	started     bool
	opened      bool
	openFailed  bool
	lastAttempt time.Time

	played  atomic.Uint64
	dropped atomic.Uint64
}

// NewEngine creates an engine; Start opens the device
func NewEngine(cfg *Config, log zerolog.Logger) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	e := &Engine{
		log:      log,
		cfg:      cfg,
		mixer:    &beep.Mixer{},
		channels: make(map[string]*Channel),
	}
	e.master.Store(math.Float64bits(cfg.MasterVolume))
	e.muted.Store(!cfg.Enabled)
	return e
}

// Start opens the shared output device. Device failure is not an error:
// the engine continues in silent mode and retries on Tick.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = true
	e.tryOpen()
	return nil
}

// tryOpen attempts speaker init; callers hold e.mu
func (e *Engine) tryOpen() {
	if e.opened {
		return
	}
	e.lastAttempt = time.Now()

	sr := beep.SampleRate(e.cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(constant.AudioBufferDuration)); err != nil {
		if !e.openFailed {
			e.log.Warn().Err(err).Msg("audio device open failed, running silent")
			e.openFailed = true
		}
		return
	}

	speaker.Play(&clipStreamer{s: e.mixer})
	e.opened = true
	e.openFailed = false
	e.log.Info().Int("sample_rate", e.cfg.SampleRate).Msg("audio device opened")
}

// Tick retries a failed device open at most once per retry interval.
// Only applies after Start requested the device in the first place.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started || e.opened || time.Since(e.lastAttempt) < constant.DeviceRetryInterval {
		return
	}
	e.tryOpen()
}

// Running reports whether the output device is open
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opened
}

// SetMuted toggles output without touching channel state
func (e *Engine) SetMuted(m bool) {
	e.muted.Store(m)
}

// SetMasterVolume writes the master gain in [0,1]
func (e *Engine) SetMasterVolume(v float64) {
	e.master.Store(math.Float64bits(clampUnit(v)))
}

// AddChannel allocates a mixer input for the given cue. Returns
// ErrChannelCap when the slot ceiling is reached; callers skip the cue
// rather than opening more outputs.
func (e *Engine) AddChannel(id string, kind core.CueKind, voice Voice) (*Channel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if old, ok := e.channels[id]; ok {
		// Replace in place: the old streamer drops off the bus on its
		// next callback
		old.removed.Store(true)
		delete(e.channels, id)
		e.compactLocked()
	}

	if len(e.channels) >= e.cfg.MaxChannels {
		e.dropped.Add(1)
		return nil, ErrChannelCap
	}

	delay := e.slot * constant.ChannelStaggerSamples
	e.slot = (e.slot + 1) % 4
	ch := newChannel(id, kind, voice, delay, &e.master, &e.muted)
	e.channels[id] = ch
	e.played.Add(1)

	if e.opened {
		// Structural bus mutation: the one operation serialized against
		// the render callback
		speaker.Lock()
		e.mixer.Add(ch)
		speaker.Unlock()
	} else {
		e.mixer.Add(ch)
	}
	return ch, nil
}

// RemoveChannel silences and detaches a channel. The streamer returns
// false on its next callback, so audio stops within one render buffer.
func (e *Engine) RemoveChannel(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ch, ok := e.channels[id]; ok {
		ch.removed.Store(true)
		delete(e.channels, id)
		e.compactLocked()
	}
}

// compactLocked rebuilds the mixer from live channels when no device is
// open. Removal normally rides the render callback dropping streamers
// that return false; without a device that callback never runs and the
// bus would grow without bound. Callers hold e.mu.
func (e *Engine) compactLocked() {
	if e.opened {
		return
	}
	e.mixer.Clear()
	for _, ch := range e.channels {
		e.mixer.Add(ch)
	}
}

// Channel looks up a live channel by id
func (e *Engine) Channel(id string) (*Channel, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch, ok := e.channels[id]
	return ch, ok
}

// SetParams writes live parameters on a channel if it exists
func (e *Engine) SetParams(id string, volume, pan, freqHz float64) {
	if ch, ok := e.Channel(id); ok {
		ch.SetParams(volume, pan, freqHz)
	}
}

// ActiveChannels returns the current mixer input count
func (e *Engine) ActiveChannels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.channels)
}

// Stats returns channels created and cue allocations dropped at the cap
func (e *Engine) Stats() (played, dropped uint64) {
	return e.played.Load(), e.dropped.Load()
}

// Shutdown silences every channel and clears the bus deterministically
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, ch := range e.channels {
		ch.removed.Store(true)
		delete(e.channels, id)
	}
	if e.opened {
		speaker.Clear()
		e.opened = false
	}
	e.started = false
	e.compactLocked()
}

// clipStreamer clamps the summed bus to device range
type clipStreamer struct {
	s beep.Streamer
}

func (c *clipStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := c.s.Stream(samples)
	for i := 0; i < n; i++ {
		samples[i][0] = clip(samples[i][0])
		samples[i][1] = clip(samples[i][1])
	}
	return n, ok
}

func (c *clipStreamer) Err() error { return nil }

func clip(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
