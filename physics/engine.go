package physics

// Engine is the physics collaborator the chain is built on. Implementations
// own every body and joint; callers only hold handles.
type Engine interface {
	// Ground is a fixed body at the world origin that roots can be pinned to.
	Ground() BodyHandle
	CreateBody(kind BodyKind, pose Isometry) BodyHandle
	AttachCapsule(body BodyHandle, shape Capsule) (ColliderHandle, error)
	// AttachImpulseJoint constrains a pair of bodies independently of any
	// multibody.
	AttachImpulseJoint(parent, child BodyHandle, joint GenericJoint) (ImpulseJointHandle, error)
	// AttachMultibodyJoint makes child a link of parent's multibody.
	AttachMultibodyJoint(parent, child BodyHandle, joint GenericJoint) (MultibodyJointHandle, error)
	Step(dt float64)
	BodyPose(body BodyHandle) (Isometry, bool)
	SetKinematicPose(body BodyHandle, pose Isometry) error
	// MultibodyJoint resolves a joint handle to its multibody and the index
	// of the link the joint attaches. The multibody may be mutated directly;
	// changes are seen by the next Step.
	MultibodyJoint(h MultibodyJointHandle) (*Multibody, int, bool)
	// ContactsEnabled reports whether the colliders of a and b may touch.
	ContactsEnabled(a, b BodyHandle) bool
}

type bodyPair struct {
	a, b BodyHandle
}

func makeBodyPair(a, b BodyHandle) bodyPair {
	if b.Index < a.Index || (b.Index == a.Index && b.Generation < a.Generation) {
		a, b = b, a
	}
	return bodyPair{a: a, b: b}
}

// ContactFilter remembers body pairs whose mutual contacts are disabled.
type ContactFilter struct {
	pairs map[bodyPair]struct{}
}

// Disable turns off contacts between a and b.
func (f *ContactFilter) Disable(a, b BodyHandle) {
	if f.pairs == nil {
		f.pairs = make(map[bodyPair]struct{})
	}
	f.pairs[makeBodyPair(a, b)] = struct{}{}
}

// Enabled reports whether a and b may collide.
func (f *ContactFilter) Enabled(a, b BodyHandle) bool {
	if f == nil || f.pairs == nil {
		return true
	}
	_, off := f.pairs[makeBodyPair(a, b)]
	return !off
}
