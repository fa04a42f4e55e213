package component

import "github.com/milk9111/jointlab/physics"

// MultibodyJointHandle is a weak reference to the multibody joint attaching
// the entity's body to its parent. The engine owns the joint.
type MultibodyJointHandle struct {
	Handle physics.MultibodyJointHandle
}

var MultibodyJointHandleComponent = NewComponent[MultibodyJointHandle]()

// ImpulseJointHandle is a weak reference to a pairwise joint.
type ImpulseJointHandle struct {
	Handle physics.ImpulseJointHandle
}

var ImpulseJointHandleComponent = NewComponent[ImpulseJointHandle]()
