package physics

import "github.com/go-gl/mathgl/mgl64"

// CapsuleAnchors places a joint pivot on the rounded caps of two capsules
// stacked along axis. The parent side sits at +Extent of the parent and the
// child side at +Extent of the child, both measured along axis.
func CapsuleAnchors(parent, child Capsule, axis mgl64.Vec3) (onParent, onChild mgl64.Vec3) {
	return axis.Mul(parent.Extent()), axis.Mul(child.Extent())
}
