// Package track maintains per-category registries of live world
// entities and selects audio targets under the channel budget.
package track

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/blindsight/echonav/constant"
	"github.com/blindsight/echonav/core"
	"github.com/blindsight/echonav/vmath"
)

// Entity is one tracked world object
type Entity struct {
	ID           core.EntityID
	Category     core.EntityCategory
	Position     vmath.Vec3F
	LastSeenTick uint64
	ExpireTick   uint64 // 0 = no scheduled expiry
}

// Tracker owns entity lifecycle between spawn and despawn events.
// Single-threaded: all calls happen on the game-tick thread.
type Tracker struct {
	log      zerolog.Logger
	entities map[core.EntityID]*Entity
	excluded [core.CategoryCount]bool
	tick     uint64
}

// New creates a tracker. Common/low-value categories passed here are
// excluded from audio selection entirely; they remain valid targets for
// announcements and other subsystems.
func New(log zerolog.Logger, audioExcluded ...core.EntityCategory) *Tracker {
	t := &Tracker{
		log:      log,
		entities: make(map[core.EntityID]*Entity),
	}
	for _, c := range audioExcluded {
		if c >= 0 && c < core.CategoryCount {
			t.excluded[c] = true
		}
	}
	return t
}

// Register adds an entity. Re-registering an existing id refreshes its
// position instead of erroring.
func (t *Tracker) Register(id core.EntityID, cat core.EntityCategory, pos vmath.Vec3F) {
	if e, ok := t.entities[id]; ok {
		t.log.Debug().Uint64("id", uint64(id)).Msg("duplicate entity registration")
		e.Position = pos
		e.LastSeenTick = t.tick
		return
	}
	t.entities[id] = &Entity{
		ID:           id,
		Category:     cat,
		Position:     pos,
		LastSeenTick: t.tick,
	}
}

// RegisterTimed adds an entity that expires after lifetimeTicks, for
// spawns that carry a duration hint instead of a despawn event
func (t *Tracker) RegisterTimed(id core.EntityID, cat core.EntityCategory, pos vmath.Vec3F, lifetimeTicks uint64) {
	t.Register(id, cat, pos)
	if e, ok := t.entities[id]; ok && lifetimeTicks > 0 {
		e.ExpireTick = t.tick + lifetimeTicks
	}
}

// Unregister removes an entity; unknown ids are ignored
func (t *Tracker) Unregister(id core.EntityID) {
	if _, ok := t.entities[id]; !ok {
		t.log.Debug().Uint64("id", uint64(id)).Msg("unregister of unknown entity")
		return
	}
	delete(t.entities, id)
}

// UpdatePosition refreshes an entity's position and liveness
func (t *Tracker) UpdatePosition(id core.EntityID, pos vmath.Vec3F) {
	e, ok := t.entities[id]
	if !ok {
		t.log.Debug().Uint64("id", uint64(id)).Msg("position update for unknown entity")
		return
	}
	e.Position = pos
	e.LastSeenTick = t.tick
}

// Advance moves the tracker clock one tick and sweeps out entities
// that expired or stopped receiving updates
func (t *Tracker) Advance() {
	t.tick++
	for id, e := range t.entities {
		if e.ExpireTick > 0 && t.tick >= e.ExpireTick {
			delete(t.entities, id)
			continue
		}
		if t.tick-e.LastSeenTick > constant.EntityTimeoutTicks {
			delete(t.entities, id)
		}
	}
}

// Tick returns the current tracker tick
func (t *Tracker) Tick() uint64 { return t.tick }

// Count returns live entities in the category
func (t *Tracker) Count(cat core.EntityCategory) int {
	n := 0
	for _, e := range t.entities {
		if e.Category == cat {
			n++
		}
	}
	return n
}

// SelectNearest returns up to max entities of the category ordered by
// distance from the listener. Audio-excluded categories return nil so a
// frequently spawning filler subtype never claims a channel.
func (t *Tracker) SelectNearest(cat core.EntityCategory, listener vmath.Vec3F, max int) []*Entity {
	if cat < 0 || cat >= core.CategoryCount || t.excluded[cat] {
		return nil
	}
	if max <= 0 || max > constant.NearestSelectionMax {
		max = constant.NearestSelectionMax
	}

	var found []*Entity
	for _, e := range t.entities {
		if e.Category == cat {
			found = append(found, e)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return vmath.V3FMagSq(vmath.V3FSub(found[i].Position, listener)) <
			vmath.V3FMagSq(vmath.V3FSub(found[j].Position, listener))
	})
	if len(found) > max {
		found = found[:max]
	}
	return found
}

// NearestAudio returns the single nearest sonifiable entity of the
// category within maxRange. One channel per category selects the
// nearest live entity, never the sum of all.
func (t *Tracker) NearestAudio(cat core.EntityCategory, listener vmath.Vec3F, maxRange float64) (*Entity, bool) {
	sel := t.SelectNearest(cat, listener, 1)
	if len(sel) == 0 {
		return nil, false
	}
	if vmath.V3FDist(sel[0].Position, listener) > maxRange {
		return nil, false
	}
	return sel[0], true
}

// NearestAny returns the single nearest entity of the category ignoring
// the audio exclusion list. Name announcements keep their own cooldown
// keyed by entity type, so excluded filler enemies still get spoken.
func (t *Tracker) NearestAny(cat core.EntityCategory, listener vmath.Vec3F) (*Entity, bool) {
	var best *Entity
	var bestSq float64
	for _, e := range t.entities {
		if e.Category != cat {
			continue
		}
		sq := vmath.V3FMagSq(vmath.V3FSub(e.Position, listener))
		if best == nil || sq < bestSq {
			best = e
			bestSq = sq
		}
	}
	return best, best != nil
}

// Lookup fetches an entity by id
func (t *Tracker) Lookup(id core.EntityID) (*Entity, bool) {
	e, ok := t.entities[id]
	return e, ok
}
