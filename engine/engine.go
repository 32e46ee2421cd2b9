// Package engine is the spatial audio cue core: it consumes game-state
// events and a per-tick listener pose, and produces spatialized cue
// audio plus throttled speech announcements. It never blocks and never
// fails gameplay; every fault degrades to a missing cue.
package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blindsight/echonav/announce"
	"github.com/blindsight/echonav/audio"
	"github.com/blindsight/echonav/beacon"
	"github.com/blindsight/echonav/constant"
	"github.com/blindsight/echonav/core"
	"github.com/blindsight/echonav/navigation"
	"github.com/blindsight/echonav/spatial"
	"github.com/blindsight/echonav/track"
	"github.com/blindsight/echonav/vmath"
)

// Options configures engine construction. Every collaborator is
// injected; nil fields get safe no-op defaults.
type Options struct {
	Audio    *audio.Config
	Profiles *beacon.Table
	NavMesh  navigation.NavMesh
	Speech   announce.SpeechSink
	Listener Listener
	Settings Settings
	Logger   zerolog.Logger

	// AudioExcluded categories never claim a cue channel
	AudioExcluded []core.EntityCategory
}

// Engine wires trackers, spatialization, beacon guidance, and the
// shared audio sink behind the host-facing event interface.
// All methods run on the game-tick thread.
type Engine struct {
	log zerolog.Logger

	audio     *audio.Engine
	tracker   *track.Tracker
	announcer *announce.Coordinator
	director  *beacon.Director
	profiles  *beacon.Table
	listener  Listener
	settings  Settings

	// Per-category contact cues, one channel each at most
	contacts map[core.EntityCategory]*contactCue

	wallDist   float64 // Last forward wall probe, <0 when clear
	wallCue    *contactCue
	nextHazard core.EntityID
}

// contactCue is one live channel sonifying the nearest entity of a
// category (or the forward wall probe)
type contactCue struct {
	id      string
	channel *audio.Channel
	beeper  *audio.BeepVoice
	zone    core.Zone // Last announced proximity band
}

// New builds the engine; Start opens the audio device
func New(opts Options) (*Engine, error) {
	if opts.Listener == nil {
		return nil, fmt.Errorf("engine: listener source is required")
	}
	if opts.Settings == nil {
		opts.Settings = defaultSettings{}
	}
	if opts.Profiles == nil {
		opts.Profiles = beacon.DefaultTable()
	}
	if opts.NavMesh == nil {
		opts.NavMesh = nullMesh{}
	}

	log := opts.Logger
	ae := audio.NewEngine(opts.Audio, log)
	ann := announce.New(opts.Speech, log)
	tr := track.New(log, opts.AudioExcluded...)

	e := &Engine{
		log:       log,
		audio:     ae,
		tracker:   tr,
		announcer: ann,
		profiles:  opts.Profiles,
		listener:  opts.Listener,
		settings:  opts.Settings,
		contacts:  make(map[core.EntityCategory]*contactCue),
		wallDist:  -1,
	}
	e.director = beacon.NewDirector(ae, opts.Profiles, opts.NavMesh, ann, e.settings.Volume, log)
	return e, nil
}

// Start opens the shared output sink; device failure leaves the engine
// in silent mode with announcements still flowing
func (e *Engine) Start() error {
	return e.audio.Start()
}

// Audio exposes the mixer for stats readouts
func (e *Engine) Audio() *audio.Engine { return e.audio }

// Tracker exposes the entity registry
func (e *Engine) Tracker() *track.Tracker { return e.tracker }

// Announcer exposes the speech gate
func (e *Engine) Announcer() *announce.Coordinator { return e.announcer }

// Director exposes beacon guidance state
func (e *Engine) Director() *beacon.Director { return e.director }

// --- Host event intake ---

// OnEnemySpawned registers an enemy
func (e *Engine) OnEnemySpawned(id core.EntityID, cat core.EntityCategory, pos vmath.Vec3F) {
	e.tracker.Register(id, cat, pos)
}

// OnEnemyDespawned removes an enemy
func (e *Engine) OnEnemyDespawned(id core.EntityID) {
	e.tracker.Unregister(id)
}

// OnEnemyPositionUpdate refreshes an enemy position
func (e *Engine) OnEnemyPositionUpdate(id core.EntityID, pos vmath.Vec3F) {
	e.tracker.UpdatePosition(id, pos)
}

// OnHazardSpawned registers a hazard that expires after durationTicks
// (0 means it persists until timeout)
func (e *Engine) OnHazardSpawned(pos vmath.Vec3F, durationTicks uint64) core.EntityID {
	e.nextHazard++
	id := core.EntityID(1<<32) + e.nextHazard // Distinct id space from host entities
	e.tracker.RegisterTimed(id, core.CategoryHazard, pos, durationTicks)
	return id
}

// OnCollectibleVisible registers a collectible with a spoken label
func (e *Engine) OnCollectibleVisible(id core.EntityID, label string, pos vmath.Vec3F) {
	e.tracker.Register(id, core.CategoryCollectible, pos)
	if label != "" {
		e.announcer.TryAnnounce("collectible_seen", label+" nearby", announce.PriorityRoutine)
	}
}

// OnCollectibleCollected removes a collectible
func (e *Engine) OnCollectibleCollected(id core.EntityID) {
	e.tracker.Unregister(id)
}

// OnBeaconTargetActivated begins guidance toward a target
func (e *Engine) OnBeaconTargetActivated(kind core.BeaconKind, target beacon.Target) {
	e.director.Activate(kind, target)
}

// OnBeaconTargetConsumed ends guidance; audio stops within one buffer
func (e *Engine) OnBeaconTargetConsumed(kind core.BeaconKind) {
	e.director.Consume(kind)
}

// OnWallProbe reports the forward wall distance for this tick; negative
// means no wall in range
func (e *Engine) OnWallProbe(distance float64) {
	e.wallDist = distance
}

// --- Per-frame advance ---

// Tick advances all state machines and cue selections. Call once per
// game frame with the frame delta (the delta only matters to hosts
// running fixed-step simulation; selections recompute fresh each call).
func (e *Engine) Tick(dt float64) {
	_ = dt

	e.audio.Tick()
	e.tracker.Advance()

	pose := e.listener.Pose()

	e.tickContact(core.CategoryEnemyNormal, pose)
	e.tickContact(core.CategoryEnemyElite, pose)
	e.tickContact(core.CategoryEnemyBoss, pose)
	e.tickContact(core.CategoryHazard, pose)
	e.tickContact(core.CategoryCollectible, pose)
	e.tickContactAnnounce(core.CategoryEnemySwarm, pose)

	e.tickWall(pose)
	e.director.Tick(pose)
}

// Shutdown silences and tears down the output sink deterministically
func (e *Engine) Shutdown() {
	e.audio.Shutdown()
	e.log.Info().Msg("cue engine shut down")
}

// tickContact drives the single channel allotted to a category: the
// nearest live entity in range is sonified, everything else is not
func (e *Engine) tickContact(cat core.EntityCategory, pose core.Pose) {
	kind := cat.Cue()
	profile := e.profiles.Get(kind)
	if profile == nil {
		return
	}
	maxRange := profile.MaxRange * e.settings.Range(kind)

	ent, ok := e.tracker.NearestAudio(cat, pose.Position, maxRange)
	cue := e.contacts[cat]

	if !ok {
		if cue != nil && cue.channel != nil {
			e.audio.RemoveChannel(cue.id)
			cue.channel = nil
			cue.beeper = nil
			cue.zone = core.ZoneNone
		}
		return
	}

	if cue == nil {
		cue = &contactCue{id: "contact:" + cat.String()}
		e.contacts[cat] = cue
	}
	if cue.channel == nil {
		e.attachContact(cue, profile)
		if cue.channel == nil {
			return // At the channel ceiling; skip the cue, never stall
		}
	}

	dist := vmath.V3FDist(pose.Position, ent.Position)

	// Enemy detection uses the bucketed 8-direction variant; hazards
	// and collectibles take the continuous path
	var sp spatial.Result
	switch cat {
	case core.CategoryHazard, core.CategoryCollectible:
		sp = spatial.Compute(pose, ent.Position, maxRange, profile.Pitch)
	default:
		sp = spatial.ComputeBucketed(pose, ent.Position, maxRange)
	}

	closeness := profile.Ease(sp.Proximity01)
	freq := vmath.Lerp(profile.MinFreqHz, profile.MaxFreqHz, closeness) * sp.PitchMul
	vol := profile.BaseVolume * e.settings.Volume(kind) * vmath.Lerp(0.3, 1.0, closeness)
	cue.channel.SetParams(vol, sp.Pan, freq)

	if cue.beeper != nil {
		interval := vmath.Lerp(float64(profile.MaxInterval), float64(profile.MinInterval), closeness)
		cue.beeper.SetInterval(framesOf(interval))
	}

	e.maybeAnnounceContact(cue, cat, profile, dist)
}

// tickContactAnnounce covers audio-excluded categories: no channel,
// announcements only, cooldown keyed by entity type
func (e *Engine) tickContactAnnounce(cat core.EntityCategory, pose core.Pose) {
	profile := e.profiles.Get(cat.Cue())
	if profile == nil {
		return
	}
	ent, ok := e.tracker.NearestAny(cat, pose.Position)
	if !ok {
		return
	}
	dist := vmath.V3FDist(pose.Position, ent.Position)
	if dist <= profile.NearRange {
		e.announcer.TryAnnounce("contact_"+cat.String(), cat.String()+" near", announce.PriorityRoutine)
	}
}

func (e *Engine) maybeAnnounceContact(cue *contactCue, cat core.EntityCategory, p *beacon.Profile, dist float64) {
	zone := p.Zone(dist)
	if !zone.MoreUrgent(cue.zone) {
		if zone < cue.zone {
			cue.zone = zone
		}
		return
	}

	// Per-zone classes: the near cooldown never delays the critical call
	var text string
	pri := announce.PriorityProgress
	switch zone {
	case core.ZoneNear:
		text = cat.String() + " close"
	case core.ZoneCritical:
		text = cat.String() + " very close"
		pri = announce.PriorityCritical
	default:
		cue.zone = zone
		return
	}

	if e.announcer.TryAnnounce("contact_"+cat.String()+"_"+zone.String(), text, pri) {
		cue.zone = zone
	}
}

func (e *Engine) attachContact(cue *contactCue, p *beacon.Profile) {
	// Boss contact is a looping pitch descent; everything else beeps
	var voice audio.Voice
	var beeper *audio.BeepVoice
	if p.Kind == core.CueEnemyBoss {
		voice = audio.NewSweepVoice(p.Wave, p.MaxFreqHz, p.MinFreqHz, 1.2, true)
	} else {
		beeper = audio.NewBeepVoice(p.Wave, p.Attack.Seconds(), p.Decay.Seconds())
		voice = beeper
	}
	ch, err := e.audio.AddChannel(cue.id, p.Kind, voice)
	if err != nil {
		e.log.Debug().Err(err).Str("cue", cue.id).Msg("contact cue skipped")
		return
	}
	cue.channel = ch
	cue.beeper = beeper
}

// tickWall drives the forward wall proximity tick from the host probe
func (e *Engine) tickWall(pose core.Pose) {
	_ = pose
	profile := e.profiles.Get(core.CueWallForward)
	if profile == nil {
		return
	}
	maxRange := profile.MaxRange * e.settings.Range(core.CueWallForward)

	if e.wallDist < 0 || e.wallDist > maxRange {
		if e.wallCue != nil && e.wallCue.channel != nil {
			e.audio.RemoveChannel(e.wallCue.id)
			e.wallCue.channel = nil
			e.wallCue.beeper = nil
		}
		return
	}

	if e.wallCue == nil {
		e.wallCue = &contactCue{id: "wall:forward"}
	}
	if e.wallCue.channel == nil {
		e.attachContact(e.wallCue, profile)
		if e.wallCue.channel == nil {
			return
		}
	}

	closeness := profile.Ease(1 - vmath.Clamp01(e.wallDist/maxRange))
	freq := vmath.Lerp(profile.MinFreqHz, profile.MaxFreqHz, closeness)
	vol := profile.BaseVolume * e.settings.Volume(core.CueWallForward) * vmath.Lerp(0.4, 1.0, closeness)
	e.wallCue.channel.SetParams(vol, 0, freq) // Always dead ahead

	if e.wallCue.beeper != nil {
		interval := vmath.Lerp(float64(profile.MaxInterval), float64(profile.MinInterval), closeness)
		e.wallCue.beeper.SetInterval(framesOf(interval))
	}
}

func framesOf(intervalNs float64) int {
	const nsPerSec = 1e9
	return int(intervalNs / nsPerSec * float64(constant.AudioSampleRate))
}

// nullMesh always fails, forcing direct-line guidance
type nullMesh struct{}

func (nullMesh) SamplePosition(vmath.Vec3F, float64) (vmath.Vec3F, bool) {
	return vmath.Vec3F{}, false
}

func (nullMesh) CalculatePath(vmath.Vec3F, vmath.Vec3F) ([]vmath.Vec3F, bool) {
	return nil, false
}
