package entity

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/jointlab/ecs"
	"github.com/milk9111/jointlab/ecs/component"
	"github.com/milk9111/jointlab/ecs/system"
	"github.com/milk9111/jointlab/physics"
	"github.com/milk9111/jointlab/prefabs"
)

// JointKind says which engine store a chain joint lives in.
type JointKind int

const (
	JointImpulse JointKind = iota
	JointMultibody
)

func (k JointKind) String() string {
	if k == JointMultibody {
		return "multibody"
	}
	return "impulse"
}

func parseJointKind(s string, parentIsRoot bool) (JointKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		if parentIsRoot {
			return JointImpulse, nil
		}
		return JointMultibody, nil
	case "impulse":
		return JointImpulse, nil
	case "multibody":
		return JointMultibody, nil
	default:
		return 0, &physics.ConfigError{Field: "joint.kind", Reason: fmt.Sprintf("unknown joint kind %q", s)}
	}
}

// ChainLink is one body of a built chain. Index 0 is the root anchor.
type ChainLink struct {
	Name     string
	Entity   ecs.Entity
	Body     physics.BodyHandle
	Kind     physics.BodyKind
	Collider physics.ColliderHandle
	Shape    physics.Capsule
	HasShape bool
	// Parent is the parent link index, -1 for the root.
	Parent int
}

// ChainJoint connects Links[Parent] to Links[Child]. Exactly one of
// Impulse and Multibody is valid, according to Kind.
type ChainJoint struct {
	Parent    int
	Child     int
	Kind      JointKind
	Impulse   physics.ImpulseJointHandle
	Multibody physics.MultibodyJointHandle
}

// Chain is the set of handles produced by BuildChain. The engine owns the
// bodies and joints; a Chain is never restructured after it is built.
type Chain struct {
	Name   string
	Links  []ChainLink
	Joints []ChainJoint
	// Pin holds a dynamic root in place against the ground. It is invalid
	// for fixed and kinematic roots.
	Pin physics.ImpulseJointHandle
}

// Link returns the link with the given name.
func (c *Chain) Link(name string) (*ChainLink, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Links {
		if c.Links[i].Name == name {
			return &c.Links[i], true
		}
	}
	return nil, false
}

// JointTo returns the joint whose child is the named link.
func (c *Chain) JointTo(name string) (*ChainJoint, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Joints {
		if c.Links[c.Joints[i].Child].Name == name {
			return &c.Joints[i], true
		}
	}
	return nil, false
}

// Bodies returns every link body in link order.
func (c *Chain) Bodies() []physics.BodyHandle {
	if c == nil {
		return nil
	}
	out := make([]physics.BodyHandle, len(c.Links))
	for i, l := range c.Links {
		out[i] = l.Body
	}
	return out
}

// BuildChain creates the root anchor and every link of spec in eng and
// spawns one entity per link. Links attach to their parent's capsule tip
// along local +Y unless the joint names explicit anchors. The first
// inconsistency aborts the build.
func BuildChain(w *ecs.World, eng physics.Engine, spec *prefabs.ChainSpec) (*Chain, error) {
	if w == nil || eng == nil || spec == nil {
		return nil, errors.New("chain: nil world, engine or spec")
	}
	name := spec.Name
	if name == "" {
		name = "chain"
	}

	chain := &Chain{Name: name}
	index := map[string]int{}

	root, err := buildRoot(w, eng, name, &spec.Root)
	if err != nil {
		return nil, fmt.Errorf("chain %s: root: %w", name, err)
	}
	chain.Links = append(chain.Links, root.link)
	chain.Pin = root.pin
	index[root.link.Name] = 0

	for _, ls := range spec.Links {
		if err := chain.addLink(w, eng, index, ls); err != nil {
			return nil, fmt.Errorf("chain %s: link %s: %w", name, ls.Name, err)
		}
	}

	return chain, nil
}

type builtRoot struct {
	link ChainLink
	pin  physics.ImpulseJointHandle
}

func buildRoot(w *ecs.World, eng physics.Engine, chainName string, rs *prefabs.RootSpec) (builtRoot, error) {
	var out builtRoot

	kind, err := physics.ParseBodyKind(strings.ToLower(strings.TrimSpace(rs.Kind)))
	if err != nil {
		return out, err
	}
	if rs.Script != "" && kind != physics.BodyKinematic {
		return out, &physics.ConfigError{Field: "script", Reason: fmt.Sprintf("driver script needs a kinematic root, got %s", kind)}
	}

	name := rs.Name
	if name == "" {
		name = "root"
	}
	pos := vec3(rs.Position)
	pose := physics.Translation(pos)

	out.link = ChainLink{Name: name, Kind: kind, Parent: -1}
	out.link.Body = eng.CreateBody(kind, pose)

	if rs.Shape != nil {
		shape := capsule(*rs.Shape)
		ch, err := eng.AttachCapsule(out.link.Body, shape)
		if err != nil {
			return out, fmt.Errorf("attach capsule: %w", err)
		}
		out.link.Collider = ch
		out.link.Shape = shape
		out.link.HasShape = true
	}

	if kind == physics.BodyDynamic {
		pin, err := physics.NewFixedJointBuilder().LocalAnchor1(pos).Build()
		if err != nil {
			return out, err
		}
		out.pin, err = eng.AttachImpulseJoint(eng.Ground(), out.link.Body, pin)
		if err != nil {
			return out, fmt.Errorf("pin to ground: %w", err)
		}
	}

	e, err := spawnLink(w, chainName, 0, &out.link, pose)
	if err != nil {
		return out, err
	}
	out.link.Entity = e

	if rs.Script != "" {
		program, err := system.CompileRootDriver(rs.Script)
		if err != nil {
			return out, fmt.Errorf("driver script %s: %w", rs.Script, err)
		}
		if err := ecs.Add(w, e, component.RootDriverComponent.Kind(), &component.RootDriver{
			Script:  rs.Script,
			Rest:    pos,
			Program: program,
		}); err != nil {
			return out, fmt.Errorf("add root driver: %w", err)
		}
	}

	return out, nil
}

func (c *Chain) addLink(w *ecs.World, eng physics.Engine, index map[string]int, ls prefabs.LinkSpec) error {
	if ls.Name == "" {
		return errors.New("link has no name")
	}
	if _, dup := index[ls.Name]; dup {
		return fmt.Errorf("duplicate link name %q", ls.Name)
	}
	parentIdx, ok := index[ls.Parent]
	if !ok {
		return fmt.Errorf("parent %q is not declared before this link", ls.Parent)
	}
	parent := &c.Links[parentIdx]

	kind, err := physics.ParseBodyKind(strings.ToLower(strings.TrimSpace(ls.Body)))
	if err != nil {
		return err
	}
	shape := capsule(ls.Shape)
	if err := shape.Validate(); err != nil {
		return err
	}

	joint, err := buildJoint(parent.Shape, shape, ls.Joint)
	if err != nil {
		return err
	}
	jointKind, err := parseJointKind(ls.Joint.Kind, parentIdx == 0)
	if err != nil {
		return err
	}

	parentPose, ok := eng.BodyPose(parent.Body)
	if !ok {
		return fmt.Errorf("parent %q: %w", parent.Name, physics.ErrStaleHandle)
	}
	pose := parentPose.Mul(joint.LocalFrame1).Mul(joint.LocalFrame2.Inverse())

	link := ChainLink{Name: ls.Name, Kind: kind, Shape: shape, HasShape: true, Parent: parentIdx}
	link.Body = eng.CreateBody(kind, pose)
	if link.Collider, err = eng.AttachCapsule(link.Body, shape); err != nil {
		return fmt.Errorf("attach capsule: %w", err)
	}

	cj := ChainJoint{Parent: parentIdx, Child: len(c.Links), Kind: jointKind}
	switch jointKind {
	case JointImpulse:
		cj.Impulse, err = eng.AttachImpulseJoint(parent.Body, link.Body, joint)
	case JointMultibody:
		cj.Multibody, err = eng.AttachMultibodyJoint(parent.Body, link.Body, joint)
	}
	if err != nil {
		return fmt.Errorf("attach %s joint: %w", jointKind, err)
	}

	if current, ok := eng.BodyPose(link.Body); ok {
		pose = current
	}
	e, err := spawnLink(w, c.Name, len(c.Links), &link, pose)
	if err != nil {
		return err
	}
	link.Entity = e

	switch jointKind {
	case JointImpulse:
		err = ecs.Add(w, e, component.ImpulseJointHandleComponent.Kind(), &component.ImpulseJointHandle{Handle: cj.Impulse})
	case JointMultibody:
		err = ecs.Add(w, e, component.MultibodyJointHandleComponent.Kind(), &component.MultibodyJointHandle{Handle: cj.Multibody})
	}
	if err != nil {
		return fmt.Errorf("add joint handle: %w", err)
	}

	index[ls.Name] = len(c.Links)
	c.Links = append(c.Links, link)
	c.Joints = append(c.Joints, cj)
	return nil
}

func spawnLink(w *ecs.World, chainName string, idx int, link *ChainLink, pose physics.Isometry) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.ChainLinkComponent.Kind(), &component.ChainLink{
		Chain:  chainName,
		Name:   link.Name,
		Index:  idx,
		Parent: link.Parent,
	}); err != nil {
		return 0, fmt.Errorf("add chain link: %w", err)
	}
	if err := ecs.Add(w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{
		Handle: link.Body,
		Kind:   link.Kind,
	}); err != nil {
		return 0, fmt.Errorf("add rigid body: %w", err)
	}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		Position: pose.Translation,
		Rotation: pose.Rotation,
	}); err != nil {
		return 0, fmt.Errorf("add transform: %w", err)
	}
	if link.HasShape {
		if err := ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{
			Handle: link.Collider,
			Shape:  link.Shape,
		}); err != nil {
			return 0, fmt.Errorf("add collider: %w", err)
		}
	}
	return e, nil
}

func buildJoint(parentShape, childShape physics.Capsule, js prefabs.JointSpec) (physics.GenericJoint, error) {
	b, err := jointBuilder(js)
	if err != nil {
		return physics.GenericJoint{}, err
	}

	onParent, onChild := physics.CapsuleAnchors(parentShape, childShape, physics.AxisY)
	if js.AnchorParent != nil {
		onParent = vec3(*js.AnchorParent)
	}
	if js.AnchorChild != nil {
		onChild = vec3(*js.AnchorChild)
	}
	b.LocalAnchor1(onParent).LocalAnchor2(onChild)

	axes := make([]string, 0, len(js.Limits))
	for name := range js.Limits {
		axes = append(axes, name)
	}
	sort.Strings(axes)
	for _, name := range axes {
		axis, err := physics.ParseJointAxis(name)
		if err != nil {
			return physics.GenericJoint{}, err
		}
		lim := js.Limits[name]
		b.Limits(axis, toJointUnits(axis, lim[0]), toJointUnits(axis, lim[1]))
	}

	if m := js.Motor; m != nil {
		axisName := m.Axis
		if axisName == "" {
			axisName = physics.AngZ.String()
		}
		axis, err := physics.ParseJointAxis(axisName)
		if err != nil {
			return physics.GenericJoint{}, err
		}
		model, err := parseMotorModel(m.Model)
		if err != nil {
			return physics.GenericJoint{}, err
		}
		b.Motor(axis, toJointUnits(axis, m.TargetPos), toJointUnits(axis, m.TargetVel), m.Stiffness, m.Damping).
			MotorModel(axis, model)
		if m.MaxForce != 0 {
			b.MotorMaxForce(axis, m.MaxForce)
		}
	}

	return b.ContactsEnabled(js.Contacts).Build()
}

func jointBuilder(js prefabs.JointSpec) (*physics.JointBuilder, error) {
	switch strings.ToLower(strings.TrimSpace(js.Type)) {
	case "fixed":
		return physics.NewFixedJointBuilder(), nil
	case "spherical":
		return physics.NewSphericalJointBuilder(), nil
	case "revolute":
		axis, err := axisOrDefault(js.Axis, physics.AngZ)
		if err != nil {
			return nil, err
		}
		return physics.NewRevoluteJointBuilder(axis), nil
	case "prismatic":
		axis, err := axisOrDefault(js.Axis, physics.LinY)
		if err != nil {
			return nil, err
		}
		return physics.NewPrismaticJointBuilder(axis), nil
	case "generic":
		var mask physics.AxesMask
		for _, name := range js.Locked {
			axis, err := physics.ParseJointAxis(name)
			if err != nil {
				return nil, err
			}
			mask = mask.Lock(axis)
		}
		return physics.NewGenericJointBuilder(mask), nil
	default:
		return nil, &physics.ConfigError{Field: "joint.type", Reason: fmt.Sprintf("unknown joint type %q", js.Type)}
	}
}

func axisOrDefault(name string, def physics.JointAxis) (physics.JointAxis, error) {
	if strings.TrimSpace(name) == "" {
		return def, nil
	}
	return physics.ParseJointAxis(name)
}

func parseMotorModel(s string) (physics.MotorModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "acceleration":
		return physics.MotorAccelerationBased, nil
	case "force":
		return physics.MotorForceBased, nil
	default:
		return 0, &physics.ConfigError{Field: "motor.model", Reason: fmt.Sprintf("unknown motor model %q", s)}
	}
}

// toJointUnits converts config degrees to radians on angular axes.
func toJointUnits(axis physics.JointAxis, v float64) float64 {
	if axis.Angular() {
		return v * math.Pi / 180
	}
	return v
}

func capsule(s prefabs.CapsuleSpec) physics.Capsule {
	return physics.Capsule{HalfLength: s.HalfLength, Radius: s.Radius}
}

func vec3(v prefabs.Vec3Spec) mgl64.Vec3 {
	return mgl64.Vec3{v[0], v[1], v[2]}
}
