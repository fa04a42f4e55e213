package component

import "github.com/go-gl/mathgl/mgl64"

// Camera is an orthographic view of the XY plane. Zoom is pixels per metre.
// When Target names a chain link the camera eases towards it.
type Camera struct {
	Center     mgl64.Vec3
	Zoom       float64
	Target     string
	Smoothness float64
}

var CameraComponent = NewComponent[Camera]()
