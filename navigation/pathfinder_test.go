package navigation

import (
	"math"
	"testing"
	"time"

	"github.com/blindsight/echonav/vmath"
)

// fakeMesh scripts the host navigation responses and counts path
// computations so throttling is observable
type fakeMesh struct {
	corners   []vmath.Vec3F
	pathOK    bool
	sampleOK  bool
	pathCalls int
}

func (m *fakeMesh) SamplePosition(pos vmath.Vec3F, radius float64) (vmath.Vec3F, bool) {
	return pos, m.sampleOK
}

func (m *fakeMesh) CalculatePath(from, to vmath.Vec3F) ([]vmath.Vec3F, bool) {
	m.pathCalls++
	return m.corners, m.pathOK
}

func fixedClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}

// TestDirectRangeSkipsMesh: close targets never touch the mesh
func TestDirectRangeSkipsMesh(t *testing.T) {
	mesh := &fakeMesh{sampleOK: true, pathOK: true}
	pf := New(mesh)

	target := vmath.Vec3F{X: 5}
	wr := pf.NextWaypoint(vmath.Vec3F{}, target)

	if mesh.pathCalls != 0 {
		t.Errorf("mesh consulted inside direct range")
	}
	if wr.Waypoint != target {
		t.Errorf("waypoint %v, want target %v", wr.Waypoint, target)
	}
	if wr.DirectFallback {
		t.Errorf("direct range flagged as fallback")
	}
	if math.Abs(wr.RemainingDistance-5) > 1e-9 {
		t.Errorf("remaining distance %.3f, want 5", wr.RemainingDistance)
	}
}

// TestPathFailureFallsBackDirect: a failed path query yields the target
// itself with the fallback flag raised
func TestPathFailureFallsBackDirect(t *testing.T) {
	mesh := &fakeMesh{sampleOK: true, pathOK: false}
	pf := New(mesh)

	target := vmath.Vec3F{X: 50}
	wr := pf.NextWaypoint(vmath.Vec3F{}, target)

	if !wr.DirectFallback {
		t.Errorf("fallback flag not set on path failure")
	}
	if wr.Waypoint != target {
		t.Errorf("fallback waypoint %v, want target %v", wr.Waypoint, target)
	}
}

// TestSampleFailureFallsBackDirect: off-mesh player positions degrade
// the same way
func TestSampleFailureFallsBackDirect(t *testing.T) {
	mesh := &fakeMesh{sampleOK: false, pathOK: true}
	pf := New(mesh)

	wr := pf.NextWaypoint(vmath.Vec3F{}, vmath.Vec3F{X: 50})
	if !wr.DirectFallback {
		t.Errorf("fallback flag not set on sample failure")
	}
	if mesh.pathCalls != 0 {
		t.Errorf("path computed from an unsampled position")
	}
}

// TestRecalcThrottle: repeated queries within the throttle window reuse
// the cached path, and the window elapsing triggers exactly one recompute
func TestRecalcThrottle(t *testing.T) {
	mesh := &fakeMesh{
		sampleOK: true,
		pathOK:   true,
		corners:  []vmath.Vec3F{{X: 10}, {X: 30}, {X: 50}},
	}
	at := time.Unix(0, 0)
	pf := New(mesh).WithClock(fixedClock(&at))

	target := vmath.Vec3F{X: 50}
	for i := 0; i < 10; i++ {
		pf.NextWaypoint(vmath.Vec3F{}, target)
		at = at.Add(30 * time.Millisecond)
	}
	if mesh.pathCalls != 1 {
		t.Errorf("path computed %d times within throttle window, want 1", mesh.pathCalls)
	}

	at = at.Add(time.Second)
	pf.NextWaypoint(vmath.Vec3F{}, target)
	if mesh.pathCalls != 2 {
		t.Errorf("path computed %d times after throttle elapsed, want 2", mesh.pathCalls)
	}
}

// TestDirtyTargetForcesRecalc: target displacement invalidates the
// cache ahead of the throttle
func TestDirtyTargetForcesRecalc(t *testing.T) {
	mesh := &fakeMesh{
		sampleOK: true,
		pathOK:   true,
		corners:  []vmath.Vec3F{{X: 50}},
	}
	at := time.Unix(0, 0)
	pf := New(mesh).WithClock(fixedClock(&at))

	pf.NextWaypoint(vmath.Vec3F{}, vmath.Vec3F{X: 50})
	pf.NextWaypoint(vmath.Vec3F{}, vmath.Vec3F{X: 50, Z: 0.5})
	if mesh.pathCalls != 1 {
		t.Errorf("small target drift forced recompute")
	}

	pf.NextWaypoint(vmath.Vec3F{}, vmath.Vec3F{X: 50, Z: 5})
	if mesh.pathCalls != 2 {
		t.Errorf("moved target did not force recompute, calls=%d", mesh.pathCalls)
	}
}

// TestCornerSelection skips corners underfoot and reports path-summed
// remaining distance, not straight-line
func TestCornerSelection(t *testing.T) {
	mesh := &fakeMesh{
		sampleOK: true,
		pathOK:   true,
		corners:  []vmath.Vec3F{{X: 0.5}, {X: 10}, {X: 10, Z: 10}},
	}
	pf := New(mesh)

	wr := pf.NextWaypoint(vmath.Vec3F{}, vmath.Vec3F{X: 10, Z: 10})
	if wr.Waypoint != (vmath.Vec3F{X: 10}) {
		t.Errorf("waypoint %v, want first corner beyond the minimum distance", wr.Waypoint)
	}
	want := 10.0 + 10.0
	if math.Abs(wr.RemainingDistance-want) > 1e-9 {
		t.Errorf("remaining distance %.3f, want %.3f", wr.RemainingDistance, want)
	}
	if wr.DirectFallback {
		t.Errorf("successful path flagged as fallback")
	}
}

// TestResetDropsCache: after Reset the next query recomputes immediately
func TestResetDropsCache(t *testing.T) {
	mesh := &fakeMesh{sampleOK: true, pathOK: true, corners: []vmath.Vec3F{{X: 50}}}
	at := time.Unix(0, 0)
	pf := New(mesh).WithClock(fixedClock(&at))

	pf.NextWaypoint(vmath.Vec3F{}, vmath.Vec3F{X: 50})
	pf.Reset()
	pf.NextWaypoint(vmath.Vec3F{}, vmath.Vec3F{X: 50})
	if mesh.pathCalls != 2 {
		t.Errorf("reset did not invalidate cache, calls=%d", mesh.pathCalls)
	}
}
