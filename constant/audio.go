package constant

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100
	AudioChannels   = 2
)

// Audio Engine Timing
const (
	// AudioBufferDuration determines speaker latency; a beacon silenced on
	// one tick stops producing samples within this window
	AudioBufferDuration = 50 * time.Millisecond
)

// Mixer Limits
const (
	// MaxChannels caps simultaneously active mixer inputs
	// One native output handle per cue stalls startup for seconds once
	// ~30 handles exist; everything routes through the single shared sink
	MaxChannels = 16

	// ChannelStaggerSamples offsets simultaneous triggers so identical
	// cues don't phase-merge into one apparent source
	ChannelStaggerSamples = 96
)

// Device Recovery
const (
	// DeviceRetryInterval paces lazy reopen attempts after a failed
	// speaker init; ticks between attempts are fully silent no-ops
	DeviceRetryInterval = 5 * time.Second
)
