package component

import "github.com/milk9111/jointlab/physics"

// RigidBody links an entity to its engine-resident body.
type RigidBody struct {
	Handle physics.BodyHandle
	Kind   physics.BodyKind
}

var RigidBodyComponent = NewComponent[RigidBody]()
