package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// jointMotion is the relative transform produced by the joint coordinates:
// translation along the free linear axes, then rotation Z*Y*X about the free
// angular axes.
func jointMotion(locked AxesMask, coords [numAxes]float64) Isometry {
	var t mgl64.Vec3
	for a := LinX; a <= LinZ; a++ {
		if locked.Free(a) {
			t[a] = coords[a]
		}
	}
	rot := mgl64.QuatIdent()
	if locked.Free(AngZ) {
		rot = rot.Mul(mgl64.QuatRotate(coords[AngZ], AxisZ))
	}
	if locked.Free(AngY) {
		rot = rot.Mul(mgl64.QuatRotate(coords[AngY], AxisY))
	}
	if locked.Free(AngX) {
		rot = rot.Mul(mgl64.QuatRotate(coords[AngX], AxisX))
	}
	return Isometry{Translation: t, Rotation: rot.Normalize()}
}

// integrateJoint advances the coordinates of one joint by dt. Motors act as
// a spring-damper on the coordinate and limits clamp it. The reduced model
// gives every coordinate unit inertia, so acceleration-based and force-based
// motors behave the same here.
func integrateJoint(joint *GenericJoint, coords, vels *[numAxes]float64, dt float64) {
	for a := JointAxis(0); a < numAxes; a++ {
		if joint.LockedAxes.Locked(a) {
			coords[a] = 0
			vels[a] = 0
			continue
		}
		if m := joint.Motors[a]; m != nil {
			accel := m.Stiffness*(m.TargetPos-coords[a]) + m.Damping*(m.TargetVel-vels[a])
			if m.MaxForce > 0 {
				accel = math.Max(-m.MaxForce, math.Min(m.MaxForce, accel))
			}
			vels[a] += accel * dt
		}
		coords[a] += vels[a] * dt
		if l := joint.Limits[a]; l != nil {
			if coords[a] < l.Min {
				coords[a] = l.Min
				if vels[a] < 0 {
					vels[a] = 0
				}
			} else if coords[a] > l.Max {
				coords[a] = l.Max
				if vels[a] > 0 {
					vels[a] = 0
				}
			}
		}
	}
}
