// Package announce gates spoken output to the external speech sink
// with per-class cooldowns and priority interruption.
package announce

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/blindsight/echonav/constant"
)

// Priority orders announcement classes
type Priority int

const (
	PriorityRoutine  Priority = iota // Progress chatter, never interrupts
	PriorityProgress                 // Zone changes
	PriorityCritical                 // Critical proximity, interrupts in-flight speech
)

// SpeechSink is the external screen-reader boundary. Dispatch is
// fire-and-forget; the coordinator never blocks on it.
type SpeechSink interface {
	Announce(text string, interrupt bool)
}

// SinkFunc adapts a function to SpeechSink
type SinkFunc func(text string, interrupt bool)

func (f SinkFunc) Announce(text string, interrupt bool) { f(text, interrupt) }

// NopSink discards announcements; useful for tests and headless runs
var NopSink SpeechSink = SinkFunc(func(string, bool) {})

// gate tracks one message class
type gate struct {
	lastFire time.Time
	cooldown time.Duration
}

// Coordinator enforces per-class cooldowns. All calls happen on the
// game-tick thread; no gate is ever written from two threads.
type Coordinator struct {
	log   zerolog.Logger
	sink  SpeechSink
	now   func() time.Time
	gates map[string]*gate

	dispatched uint64
	suppressed uint64
}

// New creates a coordinator around the given sink
func New(sink SpeechSink, log zerolog.Logger) *Coordinator {
	if sink == nil {
		sink = NopSink
	}
	return &Coordinator{
		log:   log,
		sink:  sink,
		now:   time.Now,
		gates: make(map[string]*gate),
	}
}

// WithClock injects a time source
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// SetCooldown overrides the cooldown for a message class
func (c *Coordinator) SetCooldown(class string, d time.Duration) {
	c.gateFor(class, PriorityRoutine).cooldown = d
}

// TryAnnounce dispatches text unless the class fired within its
// cooldown window. Critical priority interrupts in-flight speech;
// routine and progress announcements queue behind it.
func (c *Coordinator) TryAnnounce(class, text string, pri Priority) bool {
	g := c.gateFor(class, pri)

	now := c.now()
	if !g.lastFire.IsZero() && now.Sub(g.lastFire) < g.cooldown {
		c.suppressed++
		return false
	}
	g.lastFire = now
	c.dispatched++

	c.sink.Announce(text, pri == PriorityCritical)
	c.log.Debug().Str("class", class).Str("text", text).Msg("announced")
	return true
}

// Stats returns dispatched and cooldown-suppressed counts
func (c *Coordinator) Stats() (dispatched, suppressed uint64) {
	return c.dispatched, c.suppressed
}

func (c *Coordinator) gateFor(class string, pri Priority) *gate {
	if g, ok := c.gates[class]; ok {
		return g
	}
	g := &gate{cooldown: defaultCooldown(pri)}
	c.gates[class] = g
	return g
}

func defaultCooldown(pri Priority) time.Duration {
	switch pri {
	case PriorityCritical:
		return constant.AnnounceCooldownCombat
	case PriorityProgress:
		return constant.AnnounceCooldownProgress
	}
	return constant.AnnounceCooldownRoutine
}
