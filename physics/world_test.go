package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const testDt = 1.0 / 60.0

func hinge(t *testing.T, b *JointBuilder) GenericJoint {
	t.Helper()
	j, err := b.Build()
	if err != nil {
		t.Fatalf("build joint: %v", err)
	}
	return j
}

func TestArenaGenerations(t *testing.T) {
	var a Arena[int]
	h1 := a.Insert(1)
	h2 := a.Insert(2)
	if !a.Remove(h1) {
		t.Fatalf("remove live handle failed")
	}
	if a.Remove(h1) {
		t.Fatalf("double remove succeeded")
	}
	h3 := a.Insert(3)
	if h3.Index != h1.Index || h3.Generation == h1.Generation {
		t.Fatalf("expected slot reuse with new generation, got %+v after %+v", h3, h1)
	}
	if _, ok := a.Get(h1); ok {
		t.Fatalf("stale handle resolved")
	}
	if v, ok := a.Get(h2); !ok || *v != 2 {
		t.Fatalf("h2 = %v %v", v, ok)
	}
	if _, ok := a.Get(Handle{}); ok {
		t.Fatalf("zero handle resolved")
	}
	if a.Len() != 2 {
		t.Fatalf("len = %d, want 2", a.Len())
	}
}

func TestWorldPlacesChildFromJointFrames(t *testing.T) {
	w := NewWorld()
	parent := w.CreateBody(BodyFixed, IdentityIsometry())
	child := w.CreateBody(BodyDynamic, IdentityIsometry())

	j := hinge(t, NewRevoluteJointBuilder(AngZ).
		LocalAnchor1(mgl64.Vec3{0, 1, 0}).
		LocalAnchor2(mgl64.Vec3{0, -1, 0}).
		Limits(AngZ, math.Pi/2, math.Pi/2))
	h, err := w.AttachMultibodyJoint(parent, child, j)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	w.Step(testDt)

	pose, ok := w.BodyPose(child)
	if !ok {
		t.Fatalf("child pose missing")
	}
	want := mgl64.Vec3{-1, 1, 0}
	if !pose.Translation.ApproxEqualThreshold(want, 1e-9) {
		t.Fatalf("child translation = %v, want %v", pose.Translation, want)
	}

	mb, idx, ok := w.MultibodyJoint(h)
	if !ok || idx != 1 || mb.NumLinks() != 2 {
		t.Fatalf("multibody lookup = %v %d %v", mb, idx, ok)
	}
	link, _ := mb.Link(idx)
	if !link.LocalToWorld.ApproxEqual(pose, 1e-9) {
		t.Fatalf("link pose %v differs from body pose %v", link.LocalToWorld, pose)
	}
}

func TestWorldMotorConvergesWithinLimits(t *testing.T) {
	cases := []struct {
		name   string
		target float64
		lo, hi float64
		want   float64
	}{
		{"inside", 1.0, -2, 2, 1.0},
		{"clamped_high", 2.5, 0, 1.5, 1.5},
		{"clamped_low", -1, 0.25, 1, 0.25},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			parent := w.CreateBody(BodyFixed, IdentityIsometry())
			child := w.CreateBody(BodyDynamic, IdentityIsometry())
			j := hinge(t, NewRevoluteJointBuilder(AngZ).
				Limits(AngZ, c.lo, c.hi).
				Motor(AngZ, c.target, 0, 10, 6))
			h, err := w.AttachMultibodyJoint(parent, child, j)
			if err != nil {
				t.Fatalf("attach: %v", err)
			}
			for i := 0; i < 900; i++ {
				w.Step(testDt)
			}
			mb, idx, _ := w.MultibodyJoint(h)
			link, _ := mb.Link(idx)
			if got := link.Coord(AngZ); math.Abs(got-c.want) > 1e-3 {
				t.Fatalf("coord = %v, want %v", got, c.want)
			}
		})
	}
}

func TestWorldImpulseJointCarriesMultibodyRoot(t *testing.T) {
	w := NewWorld()
	anchor := w.CreateBody(BodyKinematic, IdentityIsometry())
	torso := w.CreateBody(BodyDynamic, IdentityIsometry())
	arm := w.CreateBody(BodyDynamic, IdentityIsometry())

	if _, err := w.AttachImpulseJoint(anchor, torso, hinge(t, NewFixedJointBuilder())); err != nil {
		t.Fatalf("attach fixed: %v", err)
	}
	h, err := w.AttachMultibodyJoint(torso, arm, hinge(t, NewSphericalJointBuilder().LocalAnchor1(mgl64.Vec3{0, 0.5, 0})))
	if err != nil {
		t.Fatalf("attach arm: %v", err)
	}

	if err := w.SetKinematicPose(anchor, Translation(mgl64.Vec3{3, 0, 0})); err != nil {
		t.Fatalf("set pose: %v", err)
	}
	w.Step(testDt)

	torsoPose, _ := w.BodyPose(torso)
	if !torsoPose.Translation.ApproxEqualThreshold(mgl64.Vec3{3, 0, 0}, 1e-9) {
		t.Fatalf("torso = %v", torsoPose.Translation)
	}
	armPose, _ := w.BodyPose(arm)
	if !armPose.Translation.ApproxEqualThreshold(mgl64.Vec3{3, 0.5, 0}, 1e-9) {
		t.Fatalf("arm = %v", armPose.Translation)
	}
	mb, _, _ := w.MultibodyJoint(h)
	if !mb.Root().LocalToWorld.Translation.ApproxEqualThreshold(mgl64.Vec3{3, 0, 0}, 1e-9) {
		t.Fatalf("multibody root not synced: %v", mb.Root().LocalToWorld)
	}
}

func TestWorldContactsAndHandles(t *testing.T) {
	w := NewWorld()
	a := w.CreateBody(BodyFixed, IdentityIsometry())
	b := w.CreateBody(BodyDynamic, IdentityIsometry())
	c := w.CreateBody(BodyDynamic, IdentityIsometry())

	h, err := w.AttachMultibodyJoint(a, b, hinge(t, NewSphericalJointBuilder()))
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if _, err := w.AttachMultibodyJoint(b, c, hinge(t, NewSphericalJointBuilder().ContactsEnabled(true))); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if w.ContactsEnabled(a, b) || w.ContactsEnabled(b, a) {
		t.Fatalf("contacts between jointed a/b should be disabled")
	}
	if !w.ContactsEnabled(b, c) {
		t.Fatalf("contacts explicitly enabled for b/c")
	}
	if !w.ContactsEnabled(a, c) {
		t.Fatalf("unjointed pair should collide")
	}

	if _, err := w.AttachMultibodyJoint(c, b, hinge(t, NewSphericalJointBuilder())); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("second parent accepted: %v", err)
	}

	if !w.RemoveMultibodyJoint(h) {
		t.Fatalf("remove failed")
	}
	if _, _, ok := w.MultibodyJoint(h); ok {
		t.Fatalf("removed joint still resolves")
	}
	w.Step(testDt)

	if err := w.SetKinematicPose(b, IdentityIsometry()); !errors.Is(err, ErrBodyKind) {
		t.Fatalf("expected ErrBodyKind, got %v", err)
	}
	if _, err := w.AttachCapsule(b, Capsule{HalfLength: 0.2, Radius: 0}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid capsule, got %v", err)
	}
	if _, err := w.AttachCapsule(b, Capsule{HalfLength: 0.2, Radius: 0.05}); err != nil {
		t.Fatalf("attach capsule: %v", err)
	}
	if got := w.Colliders(b); len(got) != 1 || got[0].Extent() != 0.25 {
		t.Fatalf("colliders = %v", got)
	}
}
