package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	AxisX = mgl64.Vec3{1, 0, 0}
	AxisY = mgl64.Vec3{0, 1, 0}
	AxisZ = mgl64.Vec3{0, 0, 1}
)

// Isometry is a rigid transform: rotation followed by translation.
type Isometry struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
}

// IdentityIsometry returns the transform that changes nothing.
func IdentityIsometry() Isometry {
	return Isometry{Rotation: mgl64.QuatIdent()}
}

// Translation returns a pure translation.
func Translation(v mgl64.Vec3) Isometry {
	return Isometry{Translation: v, Rotation: mgl64.QuatIdent()}
}

// Mul composes iso with o so that the result applies o first.
func (iso Isometry) Mul(o Isometry) Isometry {
	return Isometry{
		Translation: iso.Translation.Add(iso.Rotation.Rotate(o.Translation)),
		Rotation:    iso.Rotation.Mul(o.Rotation).Normalize(),
	}
}

// Inverse returns the transform that undoes iso.
func (iso Isometry) Inverse() Isometry {
	inv := iso.Rotation.Inverse()
	return Isometry{
		Translation: inv.Rotate(iso.Translation.Mul(-1)),
		Rotation:    inv,
	}
}

// TransformPoint maps a local point into the parent space.
func (iso Isometry) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return iso.Translation.Add(iso.Rotation.Rotate(p))
}

// TransformVector rotates a local direction into the parent space.
func (iso Isometry) TransformVector(v mgl64.Vec3) mgl64.Vec3 {
	return iso.Rotation.Rotate(v)
}

// ApproxEqual compares translations and rotations within eps. q and -q are
// the same rotation.
func (iso Isometry) ApproxEqual(o Isometry, eps float64) bool {
	if !iso.Translation.ApproxEqualThreshold(o.Translation, eps) {
		return false
	}
	return iso.Rotation.ApproxEqualThreshold(o.Rotation, eps) ||
		iso.Rotation.ApproxEqualThreshold(o.Rotation.Scale(-1), eps)
}

// PlanarAngle extracts the rotation about Z, assuming q rotates only about Z.
func PlanarAngle(q mgl64.Quat) float64 {
	return 2 * math.Atan2(q.V.Z(), q.W)
}

// PlanarRotation builds a rotation about Z.
func PlanarRotation(angle float64) mgl64.Quat {
	return mgl64.QuatRotate(angle, AxisZ)
}

func isInf(v float64) bool {
	return math.IsInf(v, 0)
}
