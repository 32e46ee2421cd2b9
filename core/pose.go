package core

import (
	"github.com/blindsight/echonav/vmath"
)

// EntityID identifies a tracked world entity for its lifetime
type EntityID uint64

// Pose is the listener transform snapshot, polled once per tick
type Pose struct {
	Position vmath.Vec3F
	Forward  vmath.Vec3F // Unit horizontal facing
}

// Zone is a named proximity band used for both audio intensity
// and announcement gating
type Zone int

const (
	ZoneNone Zone = iota // Out of range / not engaged
	ZoneFar
	ZoneNear
	ZoneCritical
)

func (z Zone) String() string {
	switch z {
	case ZoneFar:
		return "far"
	case ZoneNear:
		return "near"
	case ZoneCritical:
		return "critical"
	}
	return "none"
}

// MoreUrgent reports whether z is strictly more urgent than other
// Zones order by urgency: none < far < near < critical
func (z Zone) MoreUrgent(other Zone) bool {
	return z > other
}
