package render

import "github.com/go-gl/mathgl/mgl64"

// DefaultZoom is used when a camera has no zoom set.
const DefaultZoom = 200.0

// Projection maps the world XY plane to screen pixels. World +Y is up,
// screen +Y is down; Center lands in the middle of the screen.
type Projection struct {
	Center mgl64.Vec3
	Zoom   float64
	Width  float64
	Height float64
}

func (p Projection) zoom() float64 {
	if p.Zoom <= 0 {
		return DefaultZoom
	}
	return p.Zoom
}

// ToScreen projects a world point.
func (p Projection) ToScreen(v mgl64.Vec3) (float64, float64) {
	z := p.zoom()
	return p.Width/2 + (v.X()-p.Center.X())*z, p.Height/2 - (v.Y()-p.Center.Y())*z
}

// ToWorld inverts ToScreen on the Z = Center.Z plane.
func (p Projection) ToWorld(x, y float64) mgl64.Vec3 {
	z := p.zoom()
	return mgl64.Vec3{
		p.Center.X() + (x-p.Width/2)/z,
		p.Center.Y() - (y-p.Height/2)/z,
		p.Center.Z(),
	}
}

// Scale converts a world length to pixels.
func (p Projection) Scale(l float64) float64 {
	return l * p.zoom()
}
