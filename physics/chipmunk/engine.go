// Package chipmunk realizes the physics.Engine interface on a Chipmunk2D
// space. Everything lives in the XY plane: capsules become segment shapes
// along the body's local Y axis and the only rotational joint axis the
// solver sees is ang_z.
package chipmunk

import (
	"fmt"
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/jointlab/physics"
)

const (
	defaultIterations = 20
	defaultGravity    = -9.81
	// capsuleDensity is kg per square metre of capsule outline area.
	capsuleDensity = 1000.0
)

// Engine owns a cp.Space and the multibody arena mirrored on top of it.
type Engine struct {
	space *cp.Space

	bodies        physics.Arena[*cp.Body]
	colliders     physics.Arena[*cp.Shape]
	impulseJoints physics.Arena[[]*cp.Constraint]
	multibodies   *physics.MultibodySet
	mbConstraints map[physics.MultibodyJointHandle][]*cp.Constraint
	contacts      physics.ContactFilter

	// kinematic holds poses requested since the last Step. They are reached
	// by velocity so constraints attached to the body see the motion.
	kinematic map[physics.BodyHandle]physics.Isometry

	ground physics.BodyHandle
}

var _ physics.Engine = (*Engine)(nil)

// NewEngine creates a space with downward gravity.
func NewEngine() *Engine {
	space := cp.NewSpace()
	space.Iterations = defaultIterations
	space.SetGravity(cp.Vector{X: 0, Y: defaultGravity})

	e := &Engine{
		space:         space,
		multibodies:   physics.NewMultibodySet(),
		mbConstraints: make(map[physics.MultibodyJointHandle][]*cp.Constraint),
		kinematic:     make(map[physics.BodyHandle]physics.Isometry),
	}
	e.ground = physics.BodyHandle(e.bodies.Insert(space.StaticBody))
	return e
}

// Space returns the underlying Chipmunk space.
func (e *Engine) Space() *cp.Space {
	if e == nil {
		return nil
	}
	return e.space
}

// SetGravity changes the space gravity. Z is ignored.
func (e *Engine) SetGravity(g mgl64.Vec3) {
	e.space.SetGravity(cp.Vector{X: g.X(), Y: g.Y()})
}

func (e *Engine) Ground() physics.BodyHandle {
	return e.ground
}

func (e *Engine) CreateBody(kind physics.BodyKind, pose physics.Isometry) physics.BodyHandle {
	var body *cp.Body
	switch kind {
	case physics.BodyFixed:
		body = cp.NewStaticBody()
	case physics.BodyKinematic:
		body = cp.NewKinematicBody()
	default:
		body = cp.NewBody(1, 1)
	}
	body.SetPosition(toVector(pose.Translation))
	body.SetAngle(physics.PlanarAngle(pose.Rotation))
	e.space.AddBody(body)
	return physics.BodyHandle(e.bodies.Insert(body))
}

// AttachCapsule adds a segment shape and, for dynamic bodies, recomputes
// mass and moment from it.
func (e *Engine) AttachCapsule(h physics.BodyHandle, shape physics.Capsule) (physics.ColliderHandle, error) {
	if err := shape.Validate(); err != nil {
		return physics.ColliderHandle{}, err
	}
	body, err := e.body(h)
	if err != nil {
		return physics.ColliderHandle{}, fmt.Errorf("chipmunk: attach capsule: %w", err)
	}

	a := cp.Vector{X: 0, Y: -shape.HalfLength}
	b := cp.Vector{X: 0, Y: shape.HalfLength}
	seg := cp.NewSegment(body, a, b, shape.Radius)
	seg.SetFriction(0.8)
	e.space.AddShape(seg)

	if body.GetType() == cp.BODY_DYNAMIC {
		mass := capsuleDensity * cp.AreaForSegment(a, b, shape.Radius)
		body.SetMass(mass)
		body.SetMoment(cp.MomentForSegment(mass, a, b, shape.Radius))
	}
	return physics.ColliderHandle(e.colliders.Insert(seg)), nil
}

func (e *Engine) AttachImpulseJoint(parent, child physics.BodyHandle, joint physics.GenericJoint) (physics.ImpulseJointHandle, error) {
	constraints, err := e.realize(parent, child, joint)
	if err != nil {
		return physics.ImpulseJointHandle{}, fmt.Errorf("chipmunk: attach impulse joint: %w", err)
	}
	return physics.ImpulseJointHandle(e.impulseJoints.Insert(constraints)), nil
}

func (e *Engine) AttachMultibodyJoint(parent, child physics.BodyHandle, joint physics.GenericJoint) (physics.MultibodyJointHandle, error) {
	if err := joint.Validate(); err != nil {
		return physics.MultibodyJointHandle{}, err
	}
	parentPose, ok := e.BodyPose(parent)
	if !ok {
		return physics.MultibodyJointHandle{}, fmt.Errorf("chipmunk: attach multibody joint: parent body: %w", physics.ErrStaleHandle)
	}
	childBody, err := e.body(child)
	if err != nil {
		return physics.MultibodyJointHandle{}, fmt.Errorf("chipmunk: attach multibody joint: child body: %w", err)
	}
	h, err := e.multibodies.Insert(parent, child, parentPose, joint)
	if err != nil {
		return physics.MultibodyJointHandle{}, err
	}
	constraints, err := e.realize(parent, child, joint)
	if err != nil {
		e.multibodies.Detach(h)
		return physics.MultibodyJointHandle{}, fmt.Errorf("chipmunk: attach multibody joint: %w", err)
	}
	e.mbConstraints[h] = constraints

	// Start the child where the joint frames put it so the solver does not
	// have to pull it across the space on the first step.
	if childBody.GetType() == cp.BODY_DYNAMIC {
		if mb, idx, ok := e.multibodies.Get(h); ok {
			link, _ := mb.Link(idx)
			childBody.SetPosition(toVector(link.LocalToWorld.Translation))
			childBody.SetAngle(physics.PlanarAngle(link.LocalToWorld.Rotation))
		}
	}
	return h, nil
}

// realize maps the planar part of a generic joint onto Chipmunk
// constraints: a pivot for the anchors, a gear when ang_z is locked, a
// rotary limit for ang_z limits and a damped rotary spring plus simple motor
// for an ang_z motor. Free linear axes are not represented.
func (e *Engine) realize(parent, child physics.BodyHandle, joint physics.GenericJoint) ([]*cp.Constraint, error) {
	if err := joint.Validate(); err != nil {
		return nil, err
	}
	a, err := e.body(parent)
	if err != nil {
		return nil, fmt.Errorf("parent body: %w", err)
	}
	b, err := e.body(child)
	if err != nil {
		return nil, fmt.Errorf("child body: %w", err)
	}

	constraints := []*cp.Constraint{
		cp.NewPivotJoint2(a, b, toVector(joint.LocalAnchor1()), toVector(joint.LocalAnchor2())),
	}
	if joint.LockedAxes.Locked(physics.AngZ) {
		constraints = append(constraints, cp.NewGearJoint(a, b, 0, 1))
	}
	if l, ok := joint.Limit(physics.AngZ); ok {
		constraints = append(constraints, cp.NewRotaryLimitJoint(a, b, l.Min, l.Max))
	}
	if m, ok := joint.Motor(physics.AngZ); ok {
		// The spring measures parent angle minus child angle, the limit and
		// the joint coordinate measure child minus parent.
		if m.Stiffness > 0 || m.Damping > 0 {
			spring := cp.NewDampedRotarySpring(a, b, -m.TargetPos, m.Stiffness, m.Damping)
			if m.MaxForce > 0 {
				spring.SetMaxForce(m.MaxForce)
			}
			constraints = append(constraints, spring)
		}
		if m.TargetVel != 0 {
			motor := cp.NewSimpleMotor(a, b, -m.TargetVel)
			if m.MaxForce > 0 {
				motor.SetMaxForce(m.MaxForce)
			}
			constraints = append(constraints, motor)
		}
	}
	for _, free := range joint.LockedAxes.FreeAxes() {
		if !free.Angular() {
			log.Printf("chipmunk: free %s axis is not simulated in the plane", free)
		}
	}

	for _, c := range constraints {
		c.SetCollideBodies(joint.ContactsEnabled)
		e.space.AddConstraint(c)
	}
	if !joint.ContactsEnabled {
		e.contacts.Disable(parent, child)
	}
	return constraints, nil
}

// Step moves kinematic bodies towards their requested poses, advances the
// space and copies body poses and planar joint angles onto the multibody
// links.
func (e *Engine) Step(dt float64) {
	if dt <= 0 {
		return
	}
	driven := make([]*cp.Body, 0, len(e.kinematic))
	for h, target := range e.kinematic {
		body, err := e.body(h)
		if err != nil {
			delete(e.kinematic, h)
			continue
		}
		v := toVector(target.Translation).Sub(body.Position()).Mult(1 / dt)
		body.SetVelocityVector(v)
		body.SetAngularVelocity(wrapAngle(physics.PlanarAngle(target.Rotation)-body.Angle()) / dt)
		driven = append(driven, body)
	}

	e.space.Step(dt)

	for h, target := range e.kinematic {
		if body, err := e.body(h); err == nil {
			// Stay on the integrated branch so gear and limit joints do not see
			// a full turn.
			angle := body.Angle()
			body.SetPosition(toVector(target.Translation))
			body.SetAngle(angle + wrapAngle(physics.PlanarAngle(target.Rotation)-angle))
		}
		delete(e.kinematic, h)
	}
	for _, body := range driven {
		body.SetVelocity(0, 0)
		body.SetAngularVelocity(0)
	}

	e.multibodies.Each(func(mb *physics.Multibody) {
		for i := 0; i < mb.NumLinks(); i++ {
			link, _ := mb.Link(i)
			if pose, ok := e.BodyPose(link.Body); ok {
				link.LocalToWorld = pose
			}
		}
		for i := 1; i < mb.NumLinks(); i++ {
			link, _ := mb.Link(i)
			if link.Joint.LockedAxes.Locked(physics.AngZ) {
				continue
			}
			parent, _ := mb.Link(link.Parent)
			link.SetCoord(physics.AngZ, planarJointAngle(parent.LocalToWorld, link.LocalToWorld, &link.Joint))
		}
	})
}

func (e *Engine) BodyPose(h physics.BodyHandle) (physics.Isometry, bool) {
	body, err := e.body(h)
	if err != nil {
		return physics.Isometry{}, false
	}
	return poseOf(body), true
}

func (e *Engine) SetKinematicPose(h physics.BodyHandle, pose physics.Isometry) error {
	body, err := e.body(h)
	if err != nil {
		return fmt.Errorf("chipmunk: set kinematic pose: %w", err)
	}
	if body.GetType() != cp.BODY_KINEMATIC {
		return fmt.Errorf("chipmunk: set kinematic pose: %w", physics.ErrBodyKind)
	}
	e.kinematic[h] = pose
	return nil
}

// MultibodyJoint resolves h against the mirrored multibody arena. Frame
// rotations written through it have no planar effect; the anchors were
// handed to Chipmunk when the joint was attached.
func (e *Engine) MultibodyJoint(h physics.MultibodyJointHandle) (*physics.Multibody, int, bool) {
	return e.multibodies.Get(h)
}

func (e *Engine) ContactsEnabled(a, b physics.BodyHandle) bool {
	return e.contacts.Enabled(a, b)
}

// Constraints returns the Chipmunk constraints realizing a multibody joint.
func (e *Engine) Constraints(h physics.MultibodyJointHandle) []*cp.Constraint {
	return e.mbConstraints[h]
}

func (e *Engine) body(h physics.BodyHandle) (*cp.Body, error) {
	body, ok := e.bodies.Get(physics.Handle(h))
	if !ok || *body == nil {
		return nil, physics.ErrStaleHandle
	}
	return *body, nil
}

func poseOf(body *cp.Body) physics.Isometry {
	p := body.Position()
	return physics.Isometry{
		Translation: mgl64.Vec3{p.X, p.Y, 0},
		Rotation:    physics.PlanarRotation(body.Angle()),
	}
}

// planarJointAngle recovers the ang_z coordinate from the body poses:
// child = parent * frame1 * rot(coord) * frame2^-1 in the plane.
func planarJointAngle(parent, child physics.Isometry, joint *physics.GenericJoint) float64 {
	rel := physics.PlanarAngle(child.Rotation) - physics.PlanarAngle(parent.Rotation)
	rel -= physics.PlanarAngle(joint.LocalFrame1.Rotation)
	rel += physics.PlanarAngle(joint.LocalFrame2.Rotation)
	return wrapAngle(rel)
}

func wrapAngle(a float64) float64 {
	return math.Remainder(a, 2*math.Pi)
}

func toVector(v mgl64.Vec3) cp.Vector {
	return cp.Vector{X: v.X(), Y: v.Y()}
}
