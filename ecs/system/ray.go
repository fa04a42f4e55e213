package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/jointlab/ecs"
	"github.com/milk9111/jointlab/ecs/render"
)

const (
	rayWidth      = 2
	rayOriginSize = 3
)

// RaySystem owns the frame's gizmo buffer. It must run first so Update
// clears the previous frame's rays before any system emits new ones.
type RaySystem struct {
	gizmos *render.Gizmos
}

func NewRaySystem(gizmos *render.Gizmos) *RaySystem {
	return &RaySystem{gizmos: gizmos}
}

func (rs *RaySystem) Update(w *ecs.World) {
	if rs == nil {
		return
	}
	rs.gizmos.Clear()
}

func (rs *RaySystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if rs == nil || w == nil || screen == nil {
		return
	}
	proj := cameraProjection(w, screen)
	for _, r := range rs.gizmos.Rays() {
		x0, y0 := proj.ToScreen(r.Origin)
		x1, y1 := proj.ToScreen(r.End())
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), rayWidth, r.Color, true)
		vector.FillCircle(screen, float32(x0), float32(y0), rayOriginSize, r.Color, true)
	}
}
