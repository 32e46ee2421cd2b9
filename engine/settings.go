package engine

import (
	"github.com/blindsight/echonav/core"
)

// Listener supplies the player/camera transform, polled once per tick
type Listener interface {
	Pose() core.Pose
}

// PoseFunc adapts a function to Listener
type PoseFunc func() core.Pose

func (f PoseFunc) Pose() core.Pose { return f() }

// Settings is the external settings store: per-category volume and
// range scaling. Persistence belongs to the host, not this core.
type Settings interface {
	Volume(kind core.CueKind) float64
	Range(kind core.CueKind) float64
}

// defaultSettings applies unity scaling everywhere
type defaultSettings struct{}

func (defaultSettings) Volume(core.CueKind) float64 { return 1 }
func (defaultSettings) Range(core.CueKind) float64  { return 1 }
