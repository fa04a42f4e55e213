package physics

import "fmt"

type bodyRecord struct {
	kind      BodyKind
	pose      Isometry
	colliders []ColliderHandle
}

type colliderRecord struct {
	body  BodyHandle
	shape Capsule
}

type impulseJointRecord struct {
	parent BodyHandle
	child  BodyHandle
	joint  GenericJoint
	coords [numAxes]float64
	vels   [numAxes]float64
}

type jointStep struct {
	impulse   ImpulseJointHandle
	multibody MultibodyJointHandle
}

// World is a deterministic reduced-coordinate engine. Each joint carries its
// own coordinates; a step integrates motors, clamps limits and re-places
// every child from its parent in creation order. There is no contact
// solving; it exists so chains can run headless and be tested.
type World struct {
	bodies        Arena[bodyRecord]
	colliders     Arena[colliderRecord]
	impulseJoints Arena[impulseJointRecord]
	multibodies   *MultibodySet
	contacts      ContactFilter
	order         []jointStep
	ground        BodyHandle
	steps         int
}

var _ Engine = (*World)(nil)

// NewWorld creates a world with a fixed ground body at the origin.
func NewWorld() *World {
	w := &World{multibodies: NewMultibodySet()}
	w.ground = w.CreateBody(BodyFixed, IdentityIsometry())
	return w
}

func (w *World) Ground() BodyHandle {
	return w.ground
}

func (w *World) CreateBody(kind BodyKind, pose Isometry) BodyHandle {
	return BodyHandle(w.bodies.Insert(bodyRecord{kind: kind, pose: pose}))
}

func (w *World) AttachCapsule(body BodyHandle, shape Capsule) (ColliderHandle, error) {
	if err := shape.Validate(); err != nil {
		return ColliderHandle{}, err
	}
	rec, ok := w.bodies.Get(Handle(body))
	if !ok {
		return ColliderHandle{}, fmt.Errorf("physics: attach capsule: %w", ErrStaleHandle)
	}
	h := ColliderHandle(w.colliders.Insert(colliderRecord{body: body, shape: shape}))
	rec.colliders = append(rec.colliders, h)
	return h, nil
}

// Colliders returns the capsules attached to body.
func (w *World) Colliders(body BodyHandle) []Capsule {
	rec, ok := w.bodies.Get(Handle(body))
	if !ok {
		return nil
	}
	out := make([]Capsule, 0, len(rec.colliders))
	for _, ch := range rec.colliders {
		if c, ok := w.colliders.Get(Handle(ch)); ok {
			out = append(out, c.shape)
		}
	}
	return out
}

func (w *World) AttachImpulseJoint(parent, child BodyHandle, joint GenericJoint) (ImpulseJointHandle, error) {
	if err := joint.Validate(); err != nil {
		return ImpulseJointHandle{}, err
	}
	parentRec, childRec, err := w.jointBodies(parent, child)
	if err != nil {
		return ImpulseJointHandle{}, fmt.Errorf("physics: attach impulse joint: %w", err)
	}
	rec := impulseJointRecord{parent: parent, child: child, joint: joint}
	clampToLimits(&rec.joint, &rec.coords)
	if childRec.kind == BodyDynamic {
		childRec.pose = ChildPose(parentRec.pose, &rec.joint, rec.coords)
	}
	h := ImpulseJointHandle(w.impulseJoints.Insert(rec))
	if !joint.ContactsEnabled {
		w.contacts.Disable(parent, child)
	}
	w.order = append(w.order, jointStep{impulse: h})
	return h, nil
}

func (w *World) AttachMultibodyJoint(parent, child BodyHandle, joint GenericJoint) (MultibodyJointHandle, error) {
	if err := joint.Validate(); err != nil {
		return MultibodyJointHandle{}, err
	}
	parentRec, childRec, err := w.jointBodies(parent, child)
	if err != nil {
		return MultibodyJointHandle{}, fmt.Errorf("physics: attach multibody joint: %w", err)
	}
	h, err := w.multibodies.Insert(parent, child, parentRec.pose, joint)
	if err != nil {
		return MultibodyJointHandle{}, err
	}
	if mb, idx, ok := w.multibodies.Get(h); ok && childRec.kind == BodyDynamic {
		childRec.pose = mb.links[idx].LocalToWorld
	}
	if !joint.ContactsEnabled {
		w.contacts.Disable(parent, child)
	}
	w.order = append(w.order, jointStep{multibody: h})
	return h, nil
}

// RemoveMultibodyJoint deletes the multibody containing h.
func (w *World) RemoveMultibodyJoint(h MultibodyJointHandle) bool {
	return w.multibodies.Remove(h)
}

func (w *World) jointBodies(parent, child BodyHandle) (*bodyRecord, *bodyRecord, error) {
	parentRec, ok := w.bodies.Get(Handle(parent))
	if !ok {
		return nil, nil, fmt.Errorf("parent body: %w", ErrStaleHandle)
	}
	childRec, ok := w.bodies.Get(Handle(child))
	if !ok {
		return nil, nil, fmt.Errorf("child body: %w", ErrStaleHandle)
	}
	return parentRec, childRec, nil
}

// Step advances every joint by dt in the order the joints were attached,
// which is parent before child for chains built top down.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	for _, js := range w.order {
		if js.impulse.Valid() {
			w.stepImpulseJoint(js.impulse, dt)
			continue
		}
		w.stepMultibodyLink(js.multibody, dt)
	}
	w.steps++
}

func (w *World) stepImpulseJoint(h ImpulseJointHandle, dt float64) {
	rec, ok := w.impulseJoints.Get(Handle(h))
	if !ok {
		return
	}
	parent, child, err := w.jointBodies(rec.parent, rec.child)
	if err != nil {
		return
	}
	integrateJoint(&rec.joint, &rec.coords, &rec.vels, dt)
	if child.kind != BodyDynamic {
		return
	}
	child.pose = ChildPose(parent.pose, &rec.joint, rec.coords)
	w.syncMultibodyRoot(rec.child, child.pose)
}

func (w *World) stepMultibodyLink(h MultibodyJointHandle, dt float64) {
	mb, idx, ok := w.multibodies.Get(h)
	if !ok {
		return
	}
	link := &mb.links[idx]
	parentLink := &mb.links[link.Parent]
	if parentRec, ok := w.bodies.Get(Handle(parentLink.Body)); ok && parentLink.IsRoot() {
		parentLink.LocalToWorld = parentRec.pose
	}
	integrateJoint(&link.Joint, &link.coords, &link.vels, dt)
	childRec, ok := w.bodies.Get(Handle(link.Body))
	if !ok || childRec.kind != BodyDynamic {
		if ok {
			link.LocalToWorld = childRec.pose
		}
		return
	}
	link.LocalToWorld = ChildPose(parentLink.LocalToWorld, &link.Joint, link.coords)
	childRec.pose = link.LocalToWorld
}

func (w *World) syncMultibodyRoot(body BodyHandle, pose Isometry) {
	mb, idx, ok := w.multibodies.OfBody(body)
	if !ok || idx != 0 {
		return
	}
	mb.links[0].LocalToWorld = pose
}

// Steps returns how many steps have run.
func (w *World) Steps() int {
	return w.steps
}

func (w *World) BodyPose(body BodyHandle) (Isometry, bool) {
	rec, ok := w.bodies.Get(Handle(body))
	if !ok {
		return Isometry{}, false
	}
	return rec.pose, true
}

// BodyKind returns the kind body was created with.
func (w *World) BodyKind(body BodyHandle) (BodyKind, bool) {
	rec, ok := w.bodies.Get(Handle(body))
	if !ok {
		return 0, false
	}
	return rec.kind, true
}

func (w *World) SetKinematicPose(body BodyHandle, pose Isometry) error {
	rec, ok := w.bodies.Get(Handle(body))
	if !ok {
		return fmt.Errorf("physics: set kinematic pose: %w", ErrStaleHandle)
	}
	if rec.kind != BodyKinematic {
		return fmt.Errorf("physics: set kinematic pose on %s body: %w", rec.kind, ErrBodyKind)
	}
	rec.pose = pose
	w.syncMultibodyRoot(body, pose)
	return nil
}

func (w *World) MultibodyJoint(h MultibodyJointHandle) (*Multibody, int, bool) {
	return w.multibodies.Get(h)
}

// Multibodies exposes the multibody store.
func (w *World) Multibodies() *MultibodySet {
	return w.multibodies
}

func (w *World) ContactsEnabled(a, b BodyHandle) bool {
	return w.contacts.Enabled(a, b)
}

func clampToLimits(joint *GenericJoint, coords *[numAxes]float64) {
	for a := JointAxis(0); a < numAxes; a++ {
		if l, ok := joint.Limit(a); ok {
			coords[a] = l.Clamp(coords[a])
		}
	}
}
