package beacon

import (
	"github.com/blindsight/echonav/core"
)

// State is the guidance lifecycle for one beacon target
type State int

const (
	StateIdle State = iota
	StateApproaching
	StateNearGuidance
	StateCriticalProximity
	StateArrived
)

func (s State) String() string {
	switch s {
	case StateApproaching:
		return "approaching"
	case StateNearGuidance:
		return "near_guidance"
	case StateCriticalProximity:
		return "critical_proximity"
	case StateArrived:
		return "arrived"
	}
	return "idle"
}

// exitHysteresis stretches a zone's threshold when leaving it so the
// state machine doesn't flap at the boundary
const exitHysteresis = 1.15

// nextState advances the machine from path distance. Transitions are
// threshold crossings; regressions use the stretched exit threshold.
func nextState(current State, p *Profile, dist float64) State {
	switch current {
	case StateIdle:
		return StateApproaching
	case StateApproaching:
		if dist <= p.CriticalRange {
			return StateCriticalProximity
		}
		if dist <= p.NearRange {
			return StateNearGuidance
		}
	case StateNearGuidance:
		if dist <= p.CriticalRange {
			return StateCriticalProximity
		}
		if dist > p.NearRange*exitHysteresis {
			return StateApproaching
		}
	case StateCriticalProximity:
		if dist > p.CriticalRange*exitHysteresis {
			if dist > p.NearRange*exitHysteresis {
				return StateApproaching
			}
			return StateNearGuidance
		}
	case StateArrived:
		return StateArrived
	}
	return current
}

// zoneOf maps a state to its announcement zone
func zoneOf(s State) core.Zone {
	switch s {
	case StateApproaching:
		return core.ZoneFar
	case StateNearGuidance:
		return core.ZoneNear
	case StateCriticalProximity:
		return core.ZoneCritical
	}
	return core.ZoneNone
}
