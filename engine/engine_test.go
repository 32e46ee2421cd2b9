package engine

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/blindsight/echonav/announce"
	"github.com/blindsight/echonav/audio"
	"github.com/blindsight/echonav/beacon"
	"github.com/blindsight/echonav/constant"
	"github.com/blindsight/echonav/core"
	"github.com/blindsight/echonav/vmath"
)

type hostRig struct {
	engine *Engine
	pose   core.Pose
	lines  []string
}

// newHostRig builds an engine around a mutable pose and a recording
// speech sink; the audio device is never started
func newHostRig(t *testing.T, excluded ...core.EntityCategory) *hostRig {
	t.Helper()
	rig := &hostRig{
		pose: core.Pose{Forward: vmath.Vec3F{X: 1}},
	}
	eng, err := New(Options{
		Speech: announce.SinkFunc(func(text string, interrupt bool) {
			rig.lines = append(rig.lines, text)
		}),
		Listener:      PoseFunc(func() core.Pose { return rig.pose }),
		Logger:        zerolog.Nop(),
		AudioExcluded: excluded,
	})
	if err != nil {
		t.Fatal(err)
	}
	rig.engine = eng
	return rig
}

func (r *hostRig) saidContaining(sub string) int {
	n := 0
	for _, l := range r.lines {
		if strings.Contains(l, sub) {
			n++
		}
	}
	return n
}

// TestListenerRequired: construction without a pose source fails
func TestListenerRequired(t *testing.T) {
	if _, err := New(Options{Logger: zerolog.Nop()}); err == nil {
		t.Errorf("engine built without a listener")
	}
}

// TestNearestEnemySonified: with two same-category enemies at 5m and
// 12m, one channel exists and it tracks the closer one
func TestNearestEnemySonified(t *testing.T) {
	rig := newHostRig(t)
	rig.engine.OnEnemySpawned(1, core.CategoryEnemyNormal, vmath.Vec3F{X: 5})
	rig.engine.OnEnemySpawned(2, core.CategoryEnemyNormal, vmath.Vec3F{X: 12})

	rig.engine.Tick(0.016)
	if got := rig.engine.Audio().ActiveChannels(); got != 1 {
		t.Fatalf("active channels = %d, want 1", got)
	}

	ch, ok := rig.engine.Audio().Channel("contact:enemy_normal")
	if !ok {
		t.Fatalf("contact channel missing")
	}
	nearFreq := ch.Frequency()

	// Drop the closer enemy; the cue retargets the farther survivor at a
	// lower pitch
	rig.engine.OnEnemyDespawned(1)
	rig.engine.Tick(0.016)
	if farFreq := ch.Frequency(); farFreq >= nearFreq {
		t.Errorf("cue did not retarget: near=%.1fHz far=%.1fHz", nearFreq, farFreq)
	}
}

// TestOutOfRangeSilent: an enemy beyond cue range claims no channel
func TestOutOfRangeSilent(t *testing.T) {
	rig := newHostRig(t)
	rig.engine.OnEnemySpawned(1, core.CategoryEnemyNormal, vmath.Vec3F{X: 40})

	rig.engine.Tick(0.016)
	if got := rig.engine.Audio().ActiveChannels(); got != 0 {
		t.Errorf("out-of-range enemy claimed %d channels", got)
	}
}

// TestChannelReleasedOnDespawn: the contact channel frees once its
// last entity is gone
func TestChannelReleasedOnDespawn(t *testing.T) {
	rig := newHostRig(t)
	rig.engine.OnEnemySpawned(1, core.CategoryEnemyNormal, vmath.Vec3F{X: 5})
	rig.engine.Tick(0.016)
	if rig.engine.Audio().ActiveChannels() != 1 {
		t.Fatalf("contact channel missing")
	}

	rig.engine.OnEnemyDespawned(1)
	rig.engine.Tick(0.016)
	if got := rig.engine.Audio().ActiveChannels(); got != 0 {
		t.Errorf("despawned enemy held %d channels", got)
	}
}

// TestManyEnemiesBoundedChannels: 200 registered enemies never claim
// more than one channel per category, well under the mixer ceiling
func TestManyEnemiesBoundedChannels(t *testing.T) {
	rig := newHostRig(t)
	for i := 0; i < 200; i++ {
		cat := core.CategoryEnemyNormal
		if i%3 == 1 {
			cat = core.CategoryEnemyElite
		}
		rig.engine.OnEnemySpawned(core.EntityID(i+1), cat, vmath.Vec3F{X: float64(2 + i%20)})
	}

	rig.engine.Tick(0.016)
	got := rig.engine.Audio().ActiveChannels()
	if got > constant.MaxChannels {
		t.Errorf("active channels %d exceed ceiling %d", got, constant.MaxChannels)
	}
	if got != 2 {
		t.Errorf("active channels = %d, want one per live category", got)
	}
}

// TestBossContactSweeps: boss contact uses the descending sweep voice
func TestBossContactSweeps(t *testing.T) {
	rig := newHostRig(t)
	rig.engine.OnEnemySpawned(1, core.CategoryEnemyBoss, vmath.Vec3F{X: 10})

	rig.engine.Tick(0.016)
	ch, ok := rig.engine.Audio().Channel("contact:enemy_boss")
	if !ok {
		t.Fatalf("boss contact channel missing")
	}
	if _, isSweep := ch.Voice().(*audio.SweepVoice); !isSweep {
		t.Errorf("boss contact voice is %T, want sweep", ch.Voice())
	}
}

// TestContactZoneAnnouncedOnce: entering the near band announces one
// time across repeated ticks
func TestContactZoneAnnouncedOnce(t *testing.T) {
	rig := newHostRig(t)
	rig.engine.OnEnemySpawned(1, core.CategoryEnemyNormal, vmath.Vec3F{X: 8})

	for i := 0; i < 5; i++ {
		rig.engine.Tick(0.016)
	}
	if got := rig.saidContaining("enemy_normal close"); got != 1 {
		t.Errorf("zone announced %d times, want 1", got)
	}
}

// TestSwarmAnnounceOnly: an audio-excluded category never claims a
// channel but still gets a proximity announcement
func TestSwarmAnnounceOnly(t *testing.T) {
	rig := newHostRig(t, core.CategoryEnemySwarm)
	rig.engine.OnEnemySpawned(1, core.CategoryEnemySwarm, vmath.Vec3F{X: 2})

	rig.engine.Tick(0.016)
	if got := rig.engine.Audio().ActiveChannels(); got != 0 {
		t.Errorf("excluded category claimed %d channels", got)
	}
	if got := rig.saidContaining("enemy_swarm near"); got != 1 {
		t.Errorf("swarm announced %d times, want 1", got)
	}
}

// TestHazardExpires: a hazard with a duration hint stops sounding when
// it runs out
func TestHazardExpires(t *testing.T) {
	rig := newHostRig(t)
	rig.engine.OnHazardSpawned(vmath.Vec3F{X: 3}, 3)

	rig.engine.Tick(0.016)
	if rig.engine.Audio().ActiveChannels() != 1 {
		t.Fatalf("hazard channel missing")
	}

	rig.engine.Tick(0.016)
	rig.engine.Tick(0.016)
	if got := rig.engine.Audio().ActiveChannels(); got != 0 {
		t.Errorf("expired hazard held %d channels", got)
	}
}

// TestCollectibleLabelSpoken: sighting a labeled collectible announces
// its name once
func TestCollectibleLabelSpoken(t *testing.T) {
	rig := newHostRig(t)
	rig.engine.OnCollectibleVisible(1, "ammo cache", vmath.Vec3F{X: 50})

	if got := rig.saidContaining("ammo cache nearby"); got != 1 {
		t.Errorf("collectible label announced %d times, want 1", got)
	}

	rig.engine.OnCollectibleCollected(1)
	rig.engine.Tick(0.016)
	if got := rig.engine.Audio().ActiveChannels(); got != 0 {
		t.Errorf("collected collectible held %d channels", got)
	}
}

// TestWallProbeCue: the forward wall tick follows the probe and always
// sits dead center
func TestWallProbeCue(t *testing.T) {
	rig := newHostRig(t)

	rig.engine.OnWallProbe(2)
	rig.engine.Tick(0.016)
	ch, ok := rig.engine.Audio().Channel("wall:forward")
	if !ok {
		t.Fatalf("wall channel missing")
	}
	if ch.Pan() != 0 {
		t.Errorf("wall cue panned to %.2f, want center", ch.Pan())
	}
	nearFreq := ch.Frequency()

	rig.engine.OnWallProbe(10)
	rig.engine.Tick(0.016)
	if farFreq := ch.Frequency(); farFreq >= nearFreq {
		t.Errorf("wall pitch did not fall with distance: %.1f >= %.1f", farFreq, nearFreq)
	}

	rig.engine.OnWallProbe(-1)
	rig.engine.Tick(0.016)
	if got := rig.engine.Audio().ActiveChannels(); got != 0 {
		t.Errorf("cleared wall probe held %d channels", got)
	}
}

// TestBeaconThroughFacade drives a beacon end to end via the host
// interface
func TestBeaconThroughFacade(t *testing.T) {
	rig := newHostRig(t)
	rig.engine.OnBeaconTargetActivated(core.BeaconDropPod, beacon.StaticTarget(vmath.Vec3F{X: 30}))

	rig.engine.Tick(0.016)
	if !rig.engine.Director().Active(core.BeaconDropPod) {
		t.Fatalf("beacon not active through facade")
	}
	if rig.engine.Audio().ActiveChannels() != 1 {
		t.Errorf("beacon channel missing")
	}

	rig.engine.OnBeaconTargetConsumed(core.BeaconDropPod)
	if rig.engine.Director().Active(core.BeaconDropPod) {
		t.Errorf("beacon still active after consumption")
	}
	if got := rig.saidContaining("reached"); got != 1 {
		t.Errorf("arrival announced %d times, want 1", got)
	}
}

// TestShutdownSilencesAll: shutdown clears every live channel
func TestShutdownSilencesAll(t *testing.T) {
	rig := newHostRig(t)
	rig.engine.OnEnemySpawned(1, core.CategoryEnemyNormal, vmath.Vec3F{X: 5})
	rig.engine.OnWallProbe(3)
	rig.engine.Tick(0.016)

	rig.engine.Shutdown()
	if got := rig.engine.Audio().ActiveChannels(); got != 0 {
		t.Errorf("shutdown left %d channels", got)
	}
}
