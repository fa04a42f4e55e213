package component

import "github.com/milk9111/jointlab/physics"

// Collider stores the capsule attached to the entity's body.
type Collider struct {
	Handle physics.ColliderHandle
	Shape  physics.Capsule
}

var ColliderComponent = NewComponent[Collider]()
