package component

import "github.com/go-gl/mathgl/mgl64"

// Transform is the world pose of an entity, copied from the physics engine
// after each step.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

var TransformComponent = NewComponent[Transform]()
