package render

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a debug line from Origin along Direction. Direction's length is
// the drawn length in metres.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
	Color     color.Color
}

// End returns the tip of the ray.
func (r Ray) End() mgl64.Vec3 {
	return r.Origin.Add(r.Direction)
}

// Gizmos buffers debug shapes for one frame. Nothing drawn into it is read
// back by simulation code.
type Gizmos struct {
	rays []Ray
}

// NewGizmos creates an empty buffer.
func NewGizmos() *Gizmos {
	return &Gizmos{}
}

// Ray queues a ray for the current frame.
func (g *Gizmos) Ray(origin, direction mgl64.Vec3, c color.Color) {
	if g == nil {
		return
	}
	g.rays = append(g.rays, Ray{Origin: origin, Direction: direction, Color: c})
}

// Rays returns the rays queued this frame.
func (g *Gizmos) Rays() []Ray {
	if g == nil {
		return nil
	}
	return g.rays
}

// Clear drops every queued shape. It keeps the backing storage.
func (g *Gizmos) Clear() {
	if g == nil {
		return
	}
	g.rays = g.rays[:0]
}
