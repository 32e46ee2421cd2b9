package beacon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blindsight/echonav/core"
)

// TestDefaultTableComplete: every cue kind carries a coherent profile
func TestDefaultTableComplete(t *testing.T) {
	tab := DefaultTable()
	for k := core.CueKind(0); k < core.CueKindCount; k++ {
		p := tab.Get(k)
		if p == nil {
			t.Errorf("%v: no profile", k)
			continue
		}
		if p.Kind != k {
			t.Errorf("%v: profile kind mismatch %v", k, p.Kind)
		}
		if !(p.CriticalRange < p.NearRange && p.NearRange < p.MaxRange) {
			t.Errorf("%v: ranges not ordered: %.1f %.1f %.1f", k, p.CriticalRange, p.NearRange, p.MaxRange)
		}
		if p.MinFreqHz >= p.MaxFreqHz {
			t.Errorf("%v: frequency band inverted", k)
		}
		if p.MinInterval > p.MaxInterval {
			t.Errorf("%v: interval band inverted", k)
		}
	}
	if tab.Get(core.CueKindCount) != nil {
		t.Errorf("out-of-range kind returned a profile")
	}
}

// TestIntervalShrinksWithDistance: closer means faster beeps, floored
// at the minimum interval
func TestIntervalShrinksWithDistance(t *testing.T) {
	p := DefaultTable().Get(core.CueDropPod)

	far := p.IntervalAt(100)
	mid := p.IntervalAt(50)
	near := p.IntervalAt(3)
	if !(far > mid && mid > near) {
		t.Errorf("interval not monotonic: far=%v mid=%v near=%v", far, mid, near)
	}

	if got := p.IntervalAt(p.CriticalRange); got != p.MinInterval {
		t.Errorf("interval at critical edge %v, want floor %v", got, p.MinInterval)
	}
	if got := p.IntervalAt(0.1); got != p.MinInterval {
		t.Errorf("interval inside critical %v, want floor %v", got, p.MinInterval)
	}
	if got := p.IntervalAt(p.MaxRange + 50); got != p.MaxInterval {
		t.Errorf("interval beyond max range %v, want ceiling %v", got, p.MaxInterval)
	}
}

// TestFrequencyRisesWithCloseness: closer is higher pitched, never
// the inverse
func TestFrequencyRisesWithCloseness(t *testing.T) {
	p := DefaultTable().Get(core.CueDropPod)

	if f, n := p.FrequencyAt(100), p.FrequencyAt(3); f >= n {
		t.Errorf("frequency fell with closeness: far=%.1f near=%.1f", f, n)
	}
	if got := p.FrequencyAt(p.MaxRange); got != p.MinFreqHz {
		t.Errorf("frequency at max range %.1f, want %.1f", got, p.MinFreqHz)
	}
	if got := p.FrequencyAt(0); got != p.MaxFreqHz {
		t.Errorf("frequency at zero distance %.1f, want %.1f", got, p.MaxFreqHz)
	}
}

// TestEasingReshapesCurve: a custom curve changes mid-band values but
// never the endpoints
func TestEasingReshapesCurve(t *testing.T) {
	linear := DefaultTable().Get(core.CueDropPod)
	eased := *linear
	eased.Easing = func(t float64) float64 { return t * t }

	mid := (linear.CriticalRange + linear.MaxRange) / 2
	if linear.FrequencyAt(mid) <= eased.FrequencyAt(mid) {
		t.Errorf("quadratic easing did not lower mid-band closeness")
	}
	if linear.FrequencyAt(0) != eased.FrequencyAt(0) {
		t.Errorf("easing moved the near endpoint")
	}
	if linear.FrequencyAt(linear.MaxRange) != eased.FrequencyAt(eased.MaxRange) {
		t.Errorf("easing moved the far endpoint")
	}
}

// TestZoneThresholds buckets distances against the profile ranges
func TestZoneThresholds(t *testing.T) {
	p := DefaultTable().Get(core.CueEnemyNormal) // 5 / 12 / 35

	cases := []struct {
		dist float64
		want core.Zone
	}{
		{2, core.ZoneCritical},
		{5, core.ZoneCritical},
		{8, core.ZoneNear},
		{20, core.ZoneFar},
		{35, core.ZoneFar},
		{36, core.ZoneNone},
	}
	for _, tc := range cases {
		if got := p.Zone(tc.dist); got != tc.want {
			t.Errorf("Zone(%.1f) = %v, want %v", tc.dist, got, tc.want)
		}
	}
}

// TestStateHysteresis: the machine enters a zone at its threshold but
// only leaves past the stretched exit threshold
func TestStateHysteresis(t *testing.T) {
	p := DefaultTable().Get(core.CueDropPod) // 1.5 / 5 / 120

	s := nextState(StateApproaching, p, 10)
	if s != StateApproaching {
		t.Fatalf("far distance left approaching: %v", s)
	}
	s = nextState(s, p, 4)
	if s != StateNearGuidance {
		t.Fatalf("4m did not enter near guidance: %v", s)
	}

	// Jitter around the near threshold stays put
	for _, d := range []float64{5.2, 4.9, 5.5, 5.7} {
		if s = nextState(s, p, d); s != StateNearGuidance {
			t.Errorf("flapped at %.1fm: %v", d, s)
		}
	}

	s = nextState(s, p, 6)
	if s != StateApproaching {
		t.Errorf("6m did not exit near guidance: %v", s)
	}

	s = nextState(StateNearGuidance, p, 1.2)
	if s != StateCriticalProximity {
		t.Errorf("1.2m did not enter critical: %v", s)
	}
	if s = nextState(s, p, 1.7); s != StateCriticalProximity {
		t.Errorf("critical exited inside hysteresis band: %v", s)
	}
	if s = nextState(s, p, 2.0); s != StateNearGuidance {
		t.Errorf("2.0m did not drop critical to near: %v", s)
	}

	if s = nextState(StateArrived, p, 50); s != StateArrived {
		t.Errorf("arrived is not terminal: %v", s)
	}
}

// TestOverlayLoad applies TOML overrides onto the default table
func TestOverlayLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cues.toml")
	overlay := `
[profiles.drop_pod]
max_freq = 990
min_interval_ms = 25
max_range = 150

[profiles.hazard]
base_volume = 0.9
`
	if err := os.WriteFile(path, []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	tab := DefaultTable()
	if err := tab.LoadOverlay(path); err != nil {
		t.Fatalf("overlay load failed: %v", err)
	}

	pod := tab.Get(core.CueDropPod)
	if pod.MaxFreqHz != 990 {
		t.Errorf("max_freq override not applied: %.1f", pod.MaxFreqHz)
	}
	if pod.MinInterval != 25*time.Millisecond {
		t.Errorf("min_interval_ms override not applied: %v", pod.MinInterval)
	}
	if pod.MaxRange != 150 {
		t.Errorf("max_range override not applied: %.1f", pod.MaxRange)
	}
	if pod.MinFreqHz != 340 {
		t.Errorf("absent field changed: min_freq %.1f", pod.MinFreqHz)
	}
	if tab.Get(core.CueHazard).BaseVolume != 0.9 {
		t.Errorf("second profile override not applied")
	}
}

// TestOverlayUnknownProfile rejects typoed profile names
func TestOverlayUnknownProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cues.toml")
	if err := os.WriteFile(path, []byte("[profiles.driller]\nmax_freq = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := DefaultTable().LoadOverlay(path); err == nil {
		t.Errorf("unknown profile name accepted")
	}
}

// TestOverlayMissingFile surfaces the read error
func TestOverlayMissingFile(t *testing.T) {
	if err := DefaultTable().LoadOverlay(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Errorf("missing overlay file accepted")
	}
}
