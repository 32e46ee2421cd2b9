package audio

import (
	"os"
	"strconv"

	"github.com/blindsight/echonav/constant"
)

// Config holds audio engine settings
type Config struct {
	Enabled      bool
	MasterVolume float64 // 0.0-1.0
	SampleRate   int
	MaxChannels  int
}

// DefaultConfig returns production defaults
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		MasterVolume: 0.8,
		SampleRate:   constant.AudioSampleRate,
		MaxChannels:  constant.MaxChannels,
	}
}

// LoadConfig reads configuration from environment variables
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if enabled := os.Getenv("ECHONAV_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.Enabled = val
		}
	}

	// Master volume as 0-100
	if volume := os.Getenv("ECHONAV_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = clampUnit(float64(val) / 100.0)
		}
	}

	// SampleRate stays fixed: oscillator phase, envelope frames, and
	// beep intervals are all computed against constant.AudioSampleRate

	if max := os.Getenv("ECHONAV_MAX_CHANNELS"); max != "" {
		if val, err := strconv.Atoi(max); err == nil && val > 0 && val <= constant.MaxChannels {
			cfg.MaxChannels = val
		}
	}

	return cfg
}
