// Package navigation produces next-waypoint guidance over the host's
// navigation mesh, throttling recomputation to bound CPU cost.
package navigation

import (
	"time"

	"github.com/blindsight/echonav/constant"
	"github.com/blindsight/echonav/vmath"
)

// NavMesh is the host navigation service. Both calls may fail for
// off-mesh positions; failure is never an error here, only a fallback.
type NavMesh interface {
	// SamplePosition snaps pos onto the mesh within radius
	SamplePosition(pos vmath.Vec3F, radius float64) (vmath.Vec3F, bool)

	// CalculatePath returns path corners from one mesh point to another
	CalculatePath(from, to vmath.Vec3F) ([]vmath.Vec3F, bool)
}

// WaypointResult is one guidance query answer
type WaypointResult struct {
	Waypoint          vmath.Vec3F
	RemainingDistance float64 // Along the path, not straight-line
	DirectFallback    bool    // True when mesh sampling/pathing failed
}

// Pathfinder caches the last computed path between throttled
// recomputations; only the player-to-waypoint distance refreshes every
// tick. One instance per guidance target.
type Pathfinder struct {
	mesh NavMesh
	now  func() time.Time

	throttle    time.Duration
	directRange float64
	minWaypoint float64
	dirtyDist   float64

	lastRecalc time.Time
	lastTarget vmath.Vec3F
	corners    []vmath.Vec3F
	havePath   bool
}

// New creates a pathfinder with default throttling
func New(mesh NavMesh) *Pathfinder {
	return &Pathfinder{
		mesh:        mesh,
		now:         time.Now,
		throttle:    constant.PathRecalcInterval,
		directRange: constant.DirectRangeMeters,
		minWaypoint: constant.MinWaypointDistance,
		dirtyDist:   2.0,
	}
}

// WithClock injects a time source
func (p *Pathfinder) WithClock(now func() time.Time) *Pathfinder {
	p.now = now
	return p
}

// Reset drops the cached path; called when the guidance target changes
func (p *Pathfinder) Reset() {
	p.corners = nil
	p.havePath = false
	p.lastRecalc = time.Time{}
}

// NextWaypoint returns the point to steer toward and the path distance
// remaining. Inside the direct range the target itself is returned;
// precision matters more than obstacle avoidance at close quarters.
func (p *Pathfinder) NextWaypoint(player, target vmath.Vec3F) WaypointResult {
	straight := vmath.V3FDist(player, target)
	if straight <= p.directRange {
		return WaypointResult{Waypoint: target, RemainingDistance: straight}
	}

	if p.needsRecalc(target) {
		p.recalc(player, target)
	}

	if !p.havePath {
		return WaypointResult{
			Waypoint:          target,
			RemainingDistance: straight,
			DirectFallback:    true,
		}
	}

	return p.walkCorners(player, target)
}

// needsRecalc applies the throttle, plus an immediate recompute when
// the target moved far enough to invalidate the cached path
func (p *Pathfinder) needsRecalc(target vmath.Vec3F) bool {
	if p.lastRecalc.IsZero() {
		return true
	}
	if vmath.V3FDist(target, p.lastTarget) >= p.dirtyDist {
		return true
	}
	return p.now().Sub(p.lastRecalc) >= p.throttle
}

func (p *Pathfinder) recalc(player, target vmath.Vec3F) {
	p.lastRecalc = p.now()
	p.lastTarget = target
	p.havePath = false

	from, ok := p.mesh.SamplePosition(player, constant.NavSampleRadius)
	if !ok {
		return
	}
	to, ok := p.mesh.SamplePosition(target, constant.NavSampleRadius)
	if !ok {
		return
	}
	corners, ok := p.mesh.CalculatePath(from, to)
	if !ok || len(corners) == 0 {
		return
	}
	p.corners = corners
	p.havePath = true
}

// walkCorners picks the first cached corner meaningfully ahead of the
// player, avoiding oscillation on corners already underfoot
func (p *Pathfinder) walkCorners(player, target vmath.Vec3F) WaypointResult {
	idx := -1
	for i, c := range p.corners {
		if vmath.V3FDist(player, c) > p.minWaypoint {
			idx = i
			break
		}
	}
	if idx == -1 {
		return WaypointResult{
			Waypoint:          target,
			RemainingDistance: vmath.V3FDist(player, target),
		}
	}

	remaining := vmath.V3FDist(player, p.corners[idx])
	for i := idx; i < len(p.corners)-1; i++ {
		remaining += vmath.V3FDist(p.corners[i], p.corners[i+1])
	}
	return WaypointResult{
		Waypoint:          p.corners[idx],
		RemainingDistance: remaining,
	}
}
