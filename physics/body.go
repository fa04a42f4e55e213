package physics

import "fmt"

// BodyKind controls how the engine moves a body.
type BodyKind int

const (
	BodyDynamic BodyKind = iota
	BodyFixed
	// BodyKinematic bodies are moved only by SetKinematicPose.
	BodyKinematic
)

func (k BodyKind) String() string {
	switch k {
	case BodyDynamic:
		return "dynamic"
	case BodyFixed:
		return "fixed"
	case BodyKinematic:
		return "kinematic"
	default:
		return fmt.Sprintf("BodyKind(%d)", int(k))
	}
}

// ParseBodyKind maps a config name to a BodyKind. The empty string is dynamic.
func ParseBodyKind(s string) (BodyKind, error) {
	switch s {
	case "", "dynamic":
		return BodyDynamic, nil
	case "fixed":
		return BodyFixed, nil
	case "kinematic":
		return BodyKinematic, nil
	default:
		return 0, &ConfigError{Field: "kind", Reason: fmt.Sprintf("unknown body kind %q", s)}
	}
}

type (
	BodyHandle           Handle
	ColliderHandle       Handle
	ImpulseJointHandle   Handle
	MultibodyJointHandle Handle
)

func (h BodyHandle) Valid() bool           { return Handle(h).Valid() }
func (h ColliderHandle) Valid() bool       { return Handle(h).Valid() }
func (h ImpulseJointHandle) Valid() bool   { return Handle(h).Valid() }
func (h MultibodyJointHandle) Valid() bool { return Handle(h).Valid() }

// Capsule is a collision shape aligned with the body's local Y axis.
type Capsule struct {
	HalfLength float64
	Radius     float64
}

// Validate rejects degenerate capsules.
func (c Capsule) Validate() error {
	if !(c.HalfLength >= 0) || isInf(c.HalfLength) {
		return &ConfigError{Field: "half_length", Reason: fmt.Sprintf("must be a finite value >= 0, got %v", c.HalfLength)}
	}
	if !(c.Radius > 0) || isInf(c.Radius) {
		return &ConfigError{Field: "radius", Reason: fmt.Sprintf("must be a finite value > 0, got %v", c.Radius)}
	}
	return nil
}

// Extent is the distance from the capsule centre to the tip of a cap.
func (c Capsule) Extent() float64 {
	return c.HalfLength + c.Radius
}
