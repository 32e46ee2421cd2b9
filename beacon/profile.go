// Package beacon drives guidance audio toward world targets: cue
// profile policy tables and the per-target state machine.
package beacon

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/blindsight/echonav/audio"
	"github.com/blindsight/echonav/core"
	"github.com/blindsight/echonav/spatial"
	"github.com/blindsight/echonav/vmath"
)

// CriticalPattern selects the synthesis recipe inside the critical zone
type CriticalPattern int

const (
	CriticalRepeat     CriticalPattern = iota // Keep single beeps, floor interval
	CriticalDoubleBeep                        // "dit-DIT" pattern
	CriticalContinuous                        // Steady tone
)

// Profile is the immutable per-cue-type policy: frequency band, beep
// interval band, proximity thresholds, waveform, critical behavior.
// One instance per cue category; the guidance machine only reads it.
type Profile struct {
	Kind core.CueKind
	Wave audio.WaveKind

	MinFreqHz float64
	MaxFreqHz float64

	// Beep interval shrinks from MaxInterval at the far edge to
	// MinInterval at the critical edge, never below MinInterval
	MinInterval time.Duration
	MaxInterval time.Duration

	// Proximity thresholds in meters; MaxRange doubles as the far edge
	MaxRange      float64
	NearRange     float64
	CriticalRange float64

	BaseVolume float64
	Pitch      spatial.PitchRange
	Critical   CriticalPattern

	Attack time.Duration
	Decay  time.Duration

	// Easing reshapes the distance-to-interval/frequency curves.
	// Input and output are [0,1]; nil means linear.
	Easing func(t float64) float64
}

// Ease applies the profile easing to a normalized closeness value
func (p *Profile) Ease(t float64) float64 {
	if p.Easing == nil {
		return t
	}
	return p.Easing(t)
}

// Closeness maps a path distance to eased [0,1]: 1 at the critical
// edge and inside it, 0 at max range and beyond
func (p *Profile) Closeness(dist float64) float64 {
	t := 1 - vmath.InvLerp(p.CriticalRange, p.MaxRange, dist)
	return p.Ease(t)
}

// IntervalAt returns the beep interval at a path distance. Interval
// shrinks continuously toward MinInterval as distance drops and never
// goes below it, so retriggering cannot outrun envelope decay.
func (p *Profile) IntervalAt(dist float64) time.Duration {
	c := p.Closeness(dist)
	return time.Duration(vmath.Lerp(float64(p.MaxInterval), float64(p.MinInterval), c))
}

// FrequencyAt returns the pre-spatialization base frequency at a path
// distance: closer is higher, never the inverse
func (p *Profile) FrequencyAt(dist float64) float64 {
	c := p.Closeness(dist)
	return vmath.Lerp(p.MinFreqHz, p.MaxFreqHz, c)
}

// Zone buckets a path distance using the profile thresholds
func (p *Profile) Zone(dist float64) core.Zone {
	switch {
	case dist <= p.CriticalRange:
		return core.ZoneCritical
	case dist <= p.NearRange:
		return core.ZoneNear
	case dist <= p.MaxRange:
		return core.ZoneFar
	}
	return core.ZoneNone
}

// Table maps every cue kind to its profile
type Table [core.CueKindCount]*Profile

// Get returns the profile for a kind, nil for out-of-range kinds
func (t *Table) Get(kind core.CueKind) *Profile {
	if kind < 0 || kind >= core.CueKindCount {
		return nil
	}
	return t[kind]
}

// DefaultTable builds the production policy table
func DefaultTable() *Table {
	var t Table
	t[core.CueWallForward] = &Profile{
		Kind: core.CueWallForward, Wave: audio.WaveTriangle,
		MinFreqHz: 220, MaxFreqHz: 540,
		MinInterval: 70 * time.Millisecond, MaxInterval: 400 * time.Millisecond,
		MaxRange: 12, NearRange: 4, CriticalRange: 1.2,
		BaseVolume: 0.5, Pitch: spatial.DefaultPitch, Critical: CriticalRepeat,
		Attack: 3 * time.Millisecond, Decay: 35 * time.Millisecond,
	}
	t[core.CueEnemyNormal] = &Profile{
		Kind: core.CueEnemyNormal, Wave: audio.WaveSine,
		MinFreqHz: 330, MaxFreqHz: 660,
		MinInterval: 90 * time.Millisecond, MaxInterval: 500 * time.Millisecond,
		MaxRange: 35, NearRange: 12, CriticalRange: 5,
		BaseVolume: 0.6, Pitch: spatial.DefaultPitch, Critical: CriticalRepeat,
		Attack: 4 * time.Millisecond, Decay: 60 * time.Millisecond,
	}
	t[core.CueEnemyElite] = &Profile{
		Kind: core.CueEnemyElite, Wave: audio.WaveSquareSub,
		MinFreqHz: 280, MaxFreqHz: 620,
		MinInterval: 80 * time.Millisecond, MaxInterval: 450 * time.Millisecond,
		MaxRange: 40, NearRange: 14, CriticalRange: 6,
		BaseVolume: 0.7, Pitch: spatial.DefaultPitch, Critical: CriticalDoubleBeep,
		Attack: 4 * time.Millisecond, Decay: 70 * time.Millisecond,
	}
	t[core.CueEnemyBoss] = &Profile{
		Kind: core.CueEnemyBoss, Wave: audio.WaveSquareSub,
		MinFreqHz: 120, MaxFreqHz: 420,
		MinInterval: 100 * time.Millisecond, MaxInterval: 600 * time.Millisecond,
		MaxRange: 50, NearRange: 18, CriticalRange: 8,
		BaseVolume: 0.8, Pitch: spatial.DefaultPitch, Critical: CriticalContinuous,
		Attack: 6 * time.Millisecond, Decay: 90 * time.Millisecond,
	}
	t[core.CueDropPod] = &Profile{
		Kind: core.CueDropPod, Wave: audio.WaveSine,
		MinFreqHz: 340, MaxFreqHz: 880,
		MinInterval: 30 * time.Millisecond, MaxInterval: 250 * time.Millisecond,
		MaxRange: 120, NearRange: 5, CriticalRange: 1.5,
		BaseVolume: 0.75, Pitch: spatial.BeaconPitch, Critical: CriticalDoubleBeep,
		Attack: 3 * time.Millisecond, Decay: 45 * time.Millisecond,
	}
	t[core.CueSupplyPod] = &Profile{
		Kind: core.CueSupplyPod, Wave: audio.WaveTriangle,
		MinFreqHz: 300, MaxFreqHz: 760,
		MinInterval: 40 * time.Millisecond, MaxInterval: 280 * time.Millisecond,
		MaxRange: 80, NearRange: 6, CriticalRange: 2,
		BaseVolume: 0.65, Pitch: spatial.BeaconPitch, Critical: CriticalDoubleBeep,
		Attack: 3 * time.Millisecond, Decay: 45 * time.Millisecond,
	}
	t[core.CueHazard] = &Profile{
		Kind: core.CueHazard, Wave: audio.WaveSiren,
		MinFreqHz: 400, MaxFreqHz: 950,
		MinInterval: 120 * time.Millisecond, MaxInterval: 700 * time.Millisecond,
		MaxRange: 25, NearRange: 9, CriticalRange: 3.5,
		BaseVolume: 0.7, Pitch: spatial.DefaultPitch, Critical: CriticalContinuous,
		Attack: 8 * time.Millisecond, Decay: 110 * time.Millisecond,
	}
	t[core.CueCollectible] = &Profile{
		Kind: core.CueCollectible, Wave: audio.WaveSine,
		MinFreqHz: 700, MaxFreqHz: 1400,
		MinInterval: 150 * time.Millisecond, MaxInterval: 900 * time.Millisecond,
		MaxRange: 20, NearRange: 6, CriticalRange: 1.5,
		BaseVolume: 0.45, Pitch: spatial.DefaultPitch, Critical: CriticalRepeat,
		Attack: 2 * time.Millisecond, Decay: 40 * time.Millisecond,
	}
	t[core.CueDrill] = &Profile{
		Kind: core.CueDrill, Wave: audio.WaveTriangle,
		MinFreqHz: 260, MaxFreqHz: 700,
		MinInterval: 35 * time.Millisecond, MaxInterval: 260 * time.Millisecond,
		MaxRange: 100, NearRange: 8, CriticalRange: 3,
		BaseVolume: 0.7, Pitch: spatial.BeaconPitch, Critical: CriticalContinuous,
		Attack: 3 * time.Millisecond, Decay: 50 * time.Millisecond,
	}
	return &t
}

// profileOverlay is the TOML shape for tuning overrides
type profileOverlay struct {
	MinFreqHz     *float64 `toml:"min_freq"`
	MaxFreqHz     *float64 `toml:"max_freq"`
	MinIntervalMs *int     `toml:"min_interval_ms"`
	MaxIntervalMs *int     `toml:"max_interval_ms"`
	MaxRange      *float64 `toml:"max_range"`
	NearRange     *float64 `toml:"near_range"`
	CriticalRange *float64 `toml:"critical_range"`
	BaseVolume    *float64 `toml:"base_volume"`
}

type overlayFile struct {
	Profiles map[string]profileOverlay `toml:"profiles"`
}

// LoadOverlay applies TOML tuning overrides from path onto the table.
// Unknown profile names are an error; absent fields keep defaults.
func (t *Table) LoadOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("beacon: read overlay: %w", err)
	}
	var f overlayFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("beacon: parse overlay: %w", err)
	}

	for name, o := range f.Profiles {
		kind := core.CueKindFromName(name)
		if kind == core.CueKindCount {
			return fmt.Errorf("beacon: unknown cue profile %q", name)
		}
		p := t[kind]
		if o.MinFreqHz != nil {
			p.MinFreqHz = *o.MinFreqHz
		}
		if o.MaxFreqHz != nil {
			p.MaxFreqHz = *o.MaxFreqHz
		}
		if o.MinIntervalMs != nil {
			p.MinInterval = time.Duration(*o.MinIntervalMs) * time.Millisecond
		}
		if o.MaxIntervalMs != nil {
			p.MaxInterval = time.Duration(*o.MaxIntervalMs) * time.Millisecond
		}
		if o.MaxRange != nil {
			p.MaxRange = *o.MaxRange
		}
		if o.NearRange != nil {
			p.NearRange = *o.NearRange
		}
		if o.CriticalRange != nil {
			p.CriticalRange = *o.CriticalRange
		}
		if o.BaseVolume != nil {
			p.BaseVolume = *o.BaseVolume
		}
	}
	return nil
}
