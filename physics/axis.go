package physics

import (
	"fmt"
	"strings"
)

// JointAxis names one degree of freedom of a joint, expressed in the joint
// frames.
type JointAxis int

const (
	LinX JointAxis = iota
	LinY
	LinZ
	AngX
	AngY
	AngZ

	numAxes = 6
)

var axisNames = [numAxes]string{"lin_x", "lin_y", "lin_z", "ang_x", "ang_y", "ang_z"}

func (a JointAxis) String() string {
	if a < 0 || a >= numAxes {
		return fmt.Sprintf("JointAxis(%d)", int(a))
	}
	return axisNames[a]
}

// Angular reports whether a is a rotational axis.
func (a JointAxis) Angular() bool {
	return a >= AngX && a <= AngZ
}

// ParseJointAxis accepts the names produced by String, case-insensitively.
func ParseJointAxis(s string) (JointAxis, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range axisNames {
		if n == name {
			return JointAxis(i), nil
		}
	}
	return 0, &ConfigError{Field: "axis", Reason: fmt.Sprintf("unknown joint axis %q", s)}
}

// AxesMask has a bit set for every locked axis.
type AxesMask uint8

const (
	LockedLinearAxes  AxesMask = 1<<LinX | 1<<LinY | 1<<LinZ
	LockedAngularAxes AxesMask = 1<<AngX | 1<<AngY | 1<<AngZ

	// LockedFixedAxes allows no relative motion.
	LockedFixedAxes = LockedLinearAxes | LockedAngularAxes
	// LockedSphericalAxes is a ball joint: only rotations are free.
	LockedSphericalAxes = LockedLinearAxes
)

// LockedRevoluteAxes is a hinge turning about free.
func LockedRevoluteAxes(free JointAxis) AxesMask {
	return LockedFixedAxes &^ axisBit(free)
}

// LockedPrismaticAxes is a slider along free.
func LockedPrismaticAxes(free JointAxis) AxesMask {
	return LockedFixedAxes &^ axisBit(free)
}

func axisBit(a JointAxis) AxesMask {
	return 1 << AxesMask(a)
}

// Locked reports whether a is constrained.
func (m AxesMask) Locked(a JointAxis) bool {
	return m&axisBit(a) != 0
}

// Free reports whether a may move.
func (m AxesMask) Free(a JointAxis) bool {
	return !m.Locked(a)
}

// Lock returns m with a locked.
func (m AxesMask) Lock(a JointAxis) AxesMask {
	return m | axisBit(a)
}

// Unlock returns m with a free.
func (m AxesMask) Unlock(a JointAxis) AxesMask {
	return m &^ axisBit(a)
}

// FreeAxes lists the free axes in axis order.
func (m AxesMask) FreeAxes() []JointAxis {
	var out []JointAxis
	for a := JointAxis(0); a < numAxes; a++ {
		if m.Free(a) {
			out = append(out, a)
		}
	}
	return out
}

func (m AxesMask) String() string {
	if m&LockedFixedAxes == LockedFixedAxes {
		return "fixed"
	}
	free := m.FreeAxes()
	names := make([]string, 0, len(free))
	for _, a := range free {
		names = append(names, a.String())
	}
	return "free(" + strings.Join(names, ",") + ")"
}
