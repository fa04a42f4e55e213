package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MotorModel selects how motor stiffness and damping are interpreted.
type MotorModel int

const (
	// MotorAccelerationBased scales the motor response by the effective mass.
	MotorAccelerationBased MotorModel = iota
	MotorForceBased
)

// JointLimits bounds the joint coordinate on one axis.
type JointLimits struct {
	Min float64
	Max float64
}

// Clamp returns v inside the limits.
func (l JointLimits) Clamp(v float64) float64 {
	return math.Max(l.Min, math.Min(l.Max, v))
}

// JointMotor drives one axis towards a target position and velocity.
type JointMotor struct {
	TargetPos float64
	TargetVel float64
	Stiffness float64
	Damping   float64
	// MaxForce caps the motor output; zero means unbounded.
	MaxForce float64
	Model    MotorModel
}

// GenericJoint is the resolved constraint between a parent and a child body.
// LocalFrame1 is expressed in the parent's space, LocalFrame2 in the child's.
type GenericJoint struct {
	LocalFrame1     Isometry
	LocalFrame2     Isometry
	LockedAxes      AxesMask
	Limits          [numAxes]*JointLimits
	Motors          [numAxes]*JointMotor
	ContactsEnabled bool
}

// LocalAnchor1 is the pivot offset in the parent body's space.
func (j *GenericJoint) LocalAnchor1() mgl64.Vec3 {
	return j.LocalFrame1.Translation
}

// LocalAnchor2 is the pivot offset in the child body's space.
func (j *GenericJoint) LocalAnchor2() mgl64.Vec3 {
	return j.LocalFrame2.Translation
}

// LocalAxis1 is the principal joint axis in the parent body's space.
func (j *GenericJoint) LocalAxis1() mgl64.Vec3 {
	return j.LocalFrame1.Rotation.Rotate(AxisX)
}

// LocalAxis2 is the principal joint axis in the child body's space.
func (j *GenericJoint) LocalAxis2() mgl64.Vec3 {
	return j.LocalFrame2.Rotation.Rotate(AxisX)
}

// ResetFrameRotations sets both local frame rotations to identity, keeping
// the anchors. Calling it repeatedly has the same effect as calling it once.
func (j *GenericJoint) ResetFrameRotations() {
	j.LocalFrame1.Rotation = mgl64.QuatIdent()
	j.LocalFrame2.Rotation = mgl64.QuatIdent()
}

// Limit returns the limits on axis, if any.
func (j *GenericJoint) Limit(axis JointAxis) (JointLimits, bool) {
	if axis < 0 || axis >= numAxes || j.Limits[axis] == nil {
		return JointLimits{}, false
	}
	return *j.Limits[axis], true
}

// Motor returns the motor on axis, if any.
func (j *GenericJoint) Motor(axis JointAxis) (JointMotor, bool) {
	if axis < 0 || axis >= numAxes || j.Motors[axis] == nil {
		return JointMotor{}, false
	}
	return *j.Motors[axis], true
}

// Validate checks that limits and motors only sit on free axes and that
// their values are usable.
func (j *GenericJoint) Validate() error {
	for a := JointAxis(0); a < numAxes; a++ {
		if l := j.Limits[a]; l != nil {
			if j.LockedAxes.Locked(a) {
				return axisError(a, "limits", "axis is locked")
			}
			if math.IsNaN(l.Min) || math.IsNaN(l.Max) {
				return axisError(a, "limits", "bounds must be numbers")
			}
			if l.Min > l.Max {
				return axisError(a, "limits", fmt.Sprintf("min %v exceeds max %v", l.Min, l.Max))
			}
		}
		if m := j.Motors[a]; m != nil {
			if j.LockedAxes.Locked(a) {
				return axisError(a, "motor", "axis is locked")
			}
			for _, v := range []float64{m.TargetPos, m.TargetVel, m.Stiffness, m.Damping, m.MaxForce} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return axisError(a, "motor", "parameters must be finite")
				}
			}
			if m.Stiffness < 0 || m.Damping < 0 || m.MaxForce < 0 {
				return axisError(a, "motor", "stiffness, damping and max force must be >= 0")
			}
		}
	}
	return nil
}

// JointBuilder assembles a GenericJoint. Errors are kept until Build so a
// chain of calls reports the first inconsistency instead of dropping it.
type JointBuilder struct {
	joint GenericJoint
	err   error
}

// NewGenericJointBuilder starts a joint with the given locked axes.
func NewGenericJointBuilder(locked AxesMask) *JointBuilder {
	return &JointBuilder{joint: GenericJoint{
		LocalFrame1: IdentityIsometry(),
		LocalFrame2: IdentityIsometry(),
		LockedAxes:  locked,
	}}
}

// NewFixedJointBuilder starts a joint with every axis locked.
func NewFixedJointBuilder() *JointBuilder {
	return NewGenericJointBuilder(LockedFixedAxes)
}

// NewSphericalJointBuilder starts a ball joint.
func NewSphericalJointBuilder() *JointBuilder {
	return NewGenericJointBuilder(LockedSphericalAxes)
}

// NewRevoluteJointBuilder starts a hinge about axis, which must be angular.
func NewRevoluteJointBuilder(axis JointAxis) *JointBuilder {
	b := NewGenericJointBuilder(LockedRevoluteAxes(axis))
	if !axis.Angular() {
		b.err = axisError(axis, "revolute", "hinge axis must be angular")
	}
	return b
}

// NewPrismaticJointBuilder starts a slider along axis, which must be linear.
func NewPrismaticJointBuilder(axis JointAxis) *JointBuilder {
	b := NewGenericJointBuilder(LockedPrismaticAxes(axis))
	if axis < LinX || axis > LinZ {
		b.err = axisError(axis, "prismatic", "slider axis must be linear")
	}
	return b
}

func (b *JointBuilder) LocalAnchor1(v mgl64.Vec3) *JointBuilder {
	b.joint.LocalFrame1.Translation = v
	return b
}

func (b *JointBuilder) LocalAnchor2(v mgl64.Vec3) *JointBuilder {
	b.joint.LocalFrame2.Translation = v
	return b
}

func (b *JointBuilder) LocalFrame1(iso Isometry) *JointBuilder {
	b.joint.LocalFrame1 = iso
	return b
}

func (b *JointBuilder) LocalFrame2(iso Isometry) *JointBuilder {
	b.joint.LocalFrame2 = iso
	return b
}

// Limits bounds axis to [min, max].
func (b *JointBuilder) Limits(axis JointAxis, min, max float64) *JointBuilder {
	if !b.checkAxis(axis, "limits") {
		return b
	}
	b.joint.Limits[axis] = &JointLimits{Min: min, Max: max}
	return b
}

// Motor drives axis towards targetPos/targetVel with the given gains.
func (b *JointBuilder) Motor(axis JointAxis, targetPos, targetVel, stiffness, damping float64) *JointBuilder {
	if !b.checkAxis(axis, "motor") {
		return b
	}
	m := b.joint.Motors[axis]
	if m == nil {
		m = &JointMotor{}
		b.joint.Motors[axis] = m
	}
	m.TargetPos = targetPos
	m.TargetVel = targetVel
	m.Stiffness = stiffness
	m.Damping = damping
	return b
}

func (b *JointBuilder) MotorModel(axis JointAxis, model MotorModel) *JointBuilder {
	if !b.checkAxis(axis, "motor") {
		return b
	}
	if m := b.joint.Motors[axis]; m != nil {
		m.Model = model
		return b
	}
	b.fail(axisError(axis, "motor", "model set before motor"))
	return b
}

func (b *JointBuilder) MotorMaxForce(axis JointAxis, maxForce float64) *JointBuilder {
	if !b.checkAxis(axis, "motor") {
		return b
	}
	if m := b.joint.Motors[axis]; m != nil {
		m.MaxForce = maxForce
		return b
	}
	b.fail(axisError(axis, "motor", "max force set before motor"))
	return b
}

func (b *JointBuilder) ContactsEnabled(enabled bool) *JointBuilder {
	b.joint.ContactsEnabled = enabled
	return b
}

// Build validates and returns the joint.
func (b *JointBuilder) Build() (GenericJoint, error) {
	if b.err != nil {
		return GenericJoint{}, b.err
	}
	if err := b.joint.Validate(); err != nil {
		return GenericJoint{}, err
	}
	return b.joint, nil
}

func (b *JointBuilder) checkAxis(axis JointAxis, field string) bool {
	if axis < 0 || axis >= numAxes {
		b.fail(&ConfigError{Field: field, Reason: fmt.Sprintf("unknown axis %d", int(axis))})
		return false
	}
	if b.joint.LockedAxes.Locked(axis) {
		b.fail(axisError(axis, field, "axis is locked"))
		return false
	}
	return true
}

func (b *JointBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
