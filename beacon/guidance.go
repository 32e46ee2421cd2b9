package beacon

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blindsight/echonav/announce"
	"github.com/blindsight/echonav/audio"
	"github.com/blindsight/echonav/constant"
	"github.com/blindsight/echonav/core"
	"github.com/blindsight/echonav/navigation"
	"github.com/blindsight/echonav/spatial"
	"github.com/blindsight/echonav/vmath"
)

// Target supplies a beacon's world position; pods move while dropping
type Target interface {
	Position() vmath.Vec3F
}

// StaticTarget is a fixed-position Target
type StaticTarget vmath.Vec3F

func (t StaticTarget) Position() vmath.Vec3F { return vmath.Vec3F(t) }

// VolumeFunc scales cue volume per category from external settings
type VolumeFunc func(core.CueKind) float64

// guidance is the per-target beacon state (one per active target)
type guidance struct {
	kind    core.BeaconKind
	profile *Profile
	target  Target

	state         State
	lastAnnounced core.Zone
	pf            *navigation.Pathfinder

	channel *audio.Channel
	beeper  *audio.BeepVoice // Non-nil while a beep recipe is active
	direct  bool             // Last tick used direct-line fallback
}

// Director owns every active beacon guidance: activation, per-tick
// policy evaluation, and consumption. Game-tick thread only.
type Director struct {
	log       zerolog.Logger
	engine    *audio.Engine
	profiles  *Table
	mesh      navigation.NavMesh
	announcer *announce.Coordinator
	volume    VolumeFunc

	active map[core.BeaconKind]*guidance
}

// NewDirector wires the guidance subsystem
func NewDirector(engine *audio.Engine, profiles *Table, mesh navigation.NavMesh, announcer *announce.Coordinator, volume VolumeFunc, log zerolog.Logger) *Director {
	if profiles == nil {
		profiles = DefaultTable()
	}
	if volume == nil {
		volume = func(core.CueKind) float64 { return 1 }
	}
	return &Director{
		log:       log,
		engine:    engine,
		profiles:  profiles,
		mesh:      mesh,
		announcer: announcer,
		volume:    volume,
		active:    make(map[core.BeaconKind]*guidance),
	}
}

// Activate begins guidance toward a target. Re-activating a kind
// replaces its previous target.
func (d *Director) Activate(kind core.BeaconKind, target Target) {
	profile := d.profiles.Get(kind.Cue())
	if profile == nil || target == nil {
		return
	}
	if old, ok := d.active[kind]; ok {
		d.drop(old)
	}

	g := &guidance{
		kind:    kind,
		profile: profile,
		target:  target,
		state:   StateApproaching,
		pf:      navigation.New(d.mesh),
	}
	d.active[kind] = g
	d.attachBeepChannel(g)

	d.log.Info().Str("beacon", kind.String()).Msg("beacon guidance activated")
	d.announcer.TryAnnounce(
		"beacon_"+kind.String(),
		fmt.Sprintf("%s beacon active", spoken(kind)),
		announce.PriorityProgress,
	)
}

// Consume ends guidance after the player reached the target. The
// channel detaches immediately, so its audio stops within the next
// render buffer rather than the next tick.
func (d *Director) Consume(kind core.BeaconKind) {
	g, ok := d.active[kind]
	if !ok {
		return
	}
	g.state = StateArrived
	d.drop(g)
	delete(d.active, kind)

	d.announcer.TryAnnounce(
		"beacon_"+kind.String()+"_done",
		fmt.Sprintf("%s reached", spoken(kind)),
		announce.PriorityCritical,
	)
	d.log.Info().Str("beacon", kind.String()).Msg("beacon consumed")
}

// Active reports whether a guidance exists for the kind
func (d *Director) Active(kind core.BeaconKind) bool {
	_, ok := d.active[kind]
	return ok
}

// StateOf returns the lifecycle state for the kind, StateIdle if none
func (d *Director) StateOf(kind core.BeaconKind) State {
	if g, ok := d.active[kind]; ok {
		return g.state
	}
	return StateIdle
}

// Tick evaluates every active guidance against the listener pose:
// pathfinding, state transitions, channel parameter writes, zone
// announcements. Called once per game frame.
func (d *Director) Tick(pose core.Pose) {
	for _, g := range d.active {
		d.tickGuidance(g, pose)
	}
}

func (d *Director) tickGuidance(g *guidance, pose core.Pose) {
	p := g.profile
	targetPos := g.target.Position()

	wr := g.pf.NextWaypoint(pose.Position, targetPos)
	if wr.DirectFallback && !g.direct {
		d.log.Debug().Str("beacon", g.kind.String()).Msg("pathfinding unavailable, direct-line guidance")
	}
	g.direct = wr.DirectFallback

	dist := wr.RemainingDistance
	prev := g.state
	g.state = nextState(prev, p, dist)

	if g.state != prev {
		d.applyRecipe(g)
	}
	// Announce every tick, not only on the transition edge: a zone entry
	// suppressed by a cooldown retries until it lands
	d.announceTransition(g)

	if g.channel == nil {
		// Attach may have failed at the channel ceiling; retry now that
		// capacity may have freed
		d.applyRecipe(g)
		if g.channel == nil {
			return
		}
	}

	// Spatialize toward the waypoint so guidance bends around
	// obstacles, while intensity follows the full path distance
	sp := spatial.Compute(pose, wr.Waypoint, p.MaxRange, p.Pitch)

	closeness := p.Closeness(dist)
	freq := p.FrequencyAt(dist) * sp.PitchMul

	// Direct fallback widens tolerance: keep the cue clearly audible
	// even though the path distance is only an estimate
	volFloor := 0.35
	if g.direct {
		volFloor = 0.5
	}
	vol := p.BaseVolume * d.volume(p.Kind) * vmath.Lerp(volFloor, 1.0, closeness)

	g.channel.SetParams(vol, sp.Pan, freq)

	if g.beeper != nil {
		interval := p.IntervalAt(dist)
		g.beeper.SetInterval(int(interval.Seconds() * constant.AudioSampleRate))
	}
}

// applyRecipe switches the channel synthesis to the state's recipe
func (d *Director) applyRecipe(g *guidance) {
	p := g.profile

	if g.state == StateCriticalProximity {
		switch p.Critical {
		case CriticalDoubleBeep:
			if g.beeper == nil {
				d.attachBeepChannel(g)
			}
			if g.beeper != nil {
				g.beeper.SetPattern(audio.PatternDouble)
			}
			return
		case CriticalContinuous:
			d.attachToneChannel(g)
			return
		}
		// CriticalRepeat keeps the beep recipe; interval floors at
		// MinInterval via SetInterval clamping
		if g.beeper == nil {
			d.attachBeepChannel(g)
		}
		return
	}

	// Outside critical: single beeps
	if g.beeper == nil {
		d.attachBeepChannel(g)
		return
	}
	g.beeper.SetPattern(audio.PatternSingle)
}

func (d *Director) announceTransition(g *guidance) {
	zone := zoneOf(g.state)
	if !zone.MoreUrgent(g.lastAnnounced) {
		// Regression: re-arm announcements for the next approach, but
		// never re-announce a zone entered from the same side
		if zone < g.lastAnnounced {
			g.lastAnnounced = zone
		}
		return
	}

	// Each zone gates on its own class so a recent near announcement
	// never holds the critical one hostage to a longer cooldown
	var text string
	pri := announce.PriorityProgress
	switch zone {
	case core.ZoneNear:
		text = fmt.Sprintf("%s close", spoken(g.kind))
	case core.ZoneCritical:
		text = fmt.Sprintf("%s very close", spoken(g.kind))
		pri = announce.PriorityCritical
	default:
		return
	}

	class := "beacon_" + g.kind.String() + "_zone_" + zone.String()
	if d.announcer.TryAnnounce(class, text, pri) {
		g.lastAnnounced = zone
	}
}

func (d *Director) attachBeepChannel(g *guidance) {
	p := g.profile
	voice := audio.NewBeepVoice(p.Wave, p.Attack.Seconds(), p.Decay.Seconds())
	ch, err := d.engine.AddChannel(channelID(g.kind), p.Kind, voice)
	if err != nil {
		d.log.Debug().Err(err).Str("beacon", g.kind.String()).Msg("no channel for beacon")
		g.channel = nil
		g.beeper = nil
		return
	}
	g.channel = ch
	g.beeper = voice
}

func (d *Director) attachToneChannel(g *guidance) {
	p := g.profile
	voice := audio.NewToneVoice(p.Wave).WithVibrato(5, 0.015)
	ch, err := d.engine.AddChannel(channelID(g.kind), p.Kind, voice)
	if err != nil {
		d.log.Debug().Err(err).Str("beacon", g.kind.String()).Msg("no channel for beacon")
		g.channel = nil
		g.beeper = nil
		return
	}
	g.channel = ch
	g.beeper = nil
}

func (d *Director) drop(g *guidance) {
	if g.channel != nil {
		d.engine.RemoveChannel(g.channel.ID())
		g.channel = nil
		g.beeper = nil
	}
}

func channelID(kind core.BeaconKind) string {
	return "beacon:" + kind.String()
}

// spoken renders a beacon kind for speech output
func spoken(kind core.BeaconKind) string {
	switch kind {
	case core.BeaconDropPod:
		return "extraction pod"
	case core.BeaconSupplyPod:
		return "supply pod"
	case core.BeaconDrill:
		return "drill"
	}
	return "beacon"
}
