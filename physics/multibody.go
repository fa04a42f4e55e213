package physics

import "fmt"

// MultibodyLink is one body of a multibody together with the joint that
// attaches it to its parent link.
type MultibodyLink struct {
	Body BodyHandle
	// Parent is the index of the parent link, -1 for the root.
	Parent       int
	Joint        GenericJoint
	LocalToWorld Isometry

	coords [numAxes]float64
	vels   [numAxes]float64
}

// IsRoot reports whether the link has no parent joint.
func (l *MultibodyLink) IsRoot() bool {
	return l.Parent < 0
}

// Coord returns the joint coordinate on axis (radians or metres).
func (l *MultibodyLink) Coord(axis JointAxis) float64 {
	if axis < 0 || axis >= numAxes {
		return 0
	}
	return l.coords[axis]
}

// SetCoord overwrites the joint coordinate on axis. Engines that integrate
// bodies rather than coordinates use it to report the joint state back.
func (l *MultibodyLink) SetCoord(axis JointAxis, v float64) {
	if axis < 0 || axis >= numAxes {
		return
	}
	l.coords[axis] = v
}

// Multibody is a tree of links solved together. Links are stored parent
// before child; link 0 is the root.
type Multibody struct {
	links   []MultibodyLink
	handles []MultibodyJointHandle
}

// NewMultibody creates a multibody holding only its root link.
func NewMultibody(root BodyHandle, pose Isometry) *Multibody {
	return &Multibody{
		links: []MultibodyLink{{
			Body:         root,
			Parent:       -1,
			Joint:        GenericJoint{LockedAxes: LockedFixedAxes, LocalFrame1: IdentityIsometry(), LocalFrame2: IdentityIsometry()},
			LocalToWorld: pose,
		}},
		handles: []MultibodyJointHandle{{}},
	}
}

// NumLinks returns the number of links including the root.
func (m *Multibody) NumLinks() int {
	if m == nil {
		return 0
	}
	return len(m.links)
}

// Link returns link i for reading and writing.
func (m *Multibody) Link(i int) (*MultibodyLink, bool) {
	if m == nil || i < 0 || i >= len(m.links) {
		return nil, false
	}
	return &m.links[i], true
}

// Root returns link 0.
func (m *Multibody) Root() *MultibodyLink {
	if m == nil || len(m.links) == 0 {
		return nil
	}
	return &m.links[0]
}

// LinkOf returns the index of the link realizing body.
func (m *Multibody) LinkOf(body BodyHandle) (int, bool) {
	if m == nil {
		return 0, false
	}
	for i := range m.links {
		if m.links[i].Body == body {
			return i, true
		}
	}
	return 0, false
}

// JointHandle returns the handle of the joint attaching link i to its parent.
func (m *Multibody) JointHandle(i int) (MultibodyJointHandle, bool) {
	if m == nil || i <= 0 || i >= len(m.handles) {
		return MultibodyJointHandle{}, false
	}
	return m.handles[i], true
}

// ForwardKinematics recomputes LocalToWorld of every non-root link from its
// parent, its joint frames and its joint coordinates.
func (m *Multibody) ForwardKinematics() {
	if m == nil {
		return
	}
	for i := 1; i < len(m.links); i++ {
		link := &m.links[i]
		parent := m.links[link.Parent].LocalToWorld
		link.LocalToWorld = ChildPose(parent, &link.Joint, link.coords)
	}
}

// ChildPose places a child body given its parent's pose, the joint and the
// joint coordinates.
func ChildPose(parent Isometry, joint *GenericJoint, coords [numAxes]float64) Isometry {
	motion := jointMotion(joint.LockedAxes, coords)
	return parent.Mul(joint.LocalFrame1).Mul(motion).Mul(joint.LocalFrame2.Inverse())
}

type multibodyJointRef struct {
	multibody Handle
	link      int
}

// MultibodySet owns every multibody of an engine and resolves joint handles
// to (multibody, link) pairs.
type MultibodySet struct {
	multibodies Arena[Multibody]
	joints      Arena[multibodyJointRef]
	bodies      map[BodyHandle]multibodyJointRef
}

// NewMultibodySet creates an empty set.
func NewMultibodySet() *MultibodySet {
	return &MultibodySet{bodies: make(map[BodyHandle]multibodyJointRef)}
}

// Insert attaches child to parent. When parent is not yet part of a
// multibody a new one is rooted at parent. A body may only have one parent.
func (s *MultibodySet) Insert(parent, child BodyHandle, parentPose Isometry, joint GenericJoint) (MultibodyJointHandle, error) {
	if s.bodies == nil {
		s.bodies = make(map[BodyHandle]multibodyJointRef)
	}
	if parent == child {
		return MultibodyJointHandle{}, &ConfigError{Field: "multibody", Reason: "cannot attach a body to itself"}
	}
	if _, ok := s.bodies[child]; ok {
		return MultibodyJointHandle{}, &ConfigError{Field: "multibody", Reason: fmt.Sprintf("body %v already belongs to a multibody", child)}
	}

	ref, ok := s.bodies[parent]
	if !ok {
		h := s.multibodies.Insert(*NewMultibody(parent, parentPose))
		ref = multibodyJointRef{multibody: h, link: 0}
		s.bodies[parent] = ref
	}

	mb, ok := s.multibodies.Get(ref.multibody)
	if !ok {
		return MultibodyJointHandle{}, ErrStaleHandle
	}

	link := MultibodyLink{Body: child, Parent: ref.link, Joint: joint}
	clampToLimits(&link.Joint, &link.coords)
	link.LocalToWorld = ChildPose(mb.links[ref.link].LocalToWorld, &link.Joint, link.coords)

	childRef := multibodyJointRef{multibody: ref.multibody, link: len(mb.links)}
	jh := MultibodyJointHandle(s.joints.Insert(childRef))
	mb.links = append(mb.links, link)
	mb.handles = append(mb.handles, jh)
	s.bodies[child] = childRef
	return jh, nil
}

// Get resolves a joint handle. ok is false for stale or zero handles.
func (s *MultibodySet) Get(h MultibodyJointHandle) (*Multibody, int, bool) {
	if s == nil {
		return nil, 0, false
	}
	ref, ok := s.joints.Get(Handle(h))
	if !ok {
		return nil, 0, false
	}
	mb, ok := s.multibodies.Get(ref.multibody)
	if !ok {
		return nil, 0, false
	}
	return mb, ref.link, true
}

// OfBody returns the multibody containing body and its link index.
func (s *MultibodySet) OfBody(body BodyHandle) (*Multibody, int, bool) {
	if s == nil {
		return nil, 0, false
	}
	ref, ok := s.bodies[body]
	if !ok {
		return nil, 0, false
	}
	mb, ok := s.multibodies.Get(ref.multibody)
	if !ok {
		return nil, 0, false
	}
	return mb, ref.link, true
}

// Remove deletes the whole multibody containing h. Every joint handle into
// it goes stale.
func (s *MultibodySet) Remove(h MultibodyJointHandle) bool {
	ref, ok := s.joints.Get(Handle(h))
	if !ok {
		return false
	}
	mbHandle := ref.multibody
	mb, ok := s.multibodies.Get(mbHandle)
	if !ok {
		return false
	}
	for i := range mb.links {
		delete(s.bodies, mb.links[i].Body)
		if i > 0 {
			s.joints.Remove(Handle(mb.handles[i]))
		}
	}
	return s.multibodies.Remove(mbHandle)
}

// Detach removes the most recently attached link of a multibody, undoing
// the Insert that returned h. Other joint handles into the multibody stay
// valid. When only the root would remain the multibody is removed too.
func (s *MultibodySet) Detach(h MultibodyJointHandle) bool {
	ref, ok := s.joints.Get(Handle(h))
	if !ok {
		return false
	}
	mb, ok := s.multibodies.Get(ref.multibody)
	if !ok || ref.link != len(mb.links)-1 {
		return false
	}
	if len(mb.links) <= 2 {
		return s.Remove(h)
	}
	delete(s.bodies, mb.links[ref.link].Body)
	s.joints.Remove(Handle(h))
	mb.links = mb.links[:ref.link]
	mb.handles = mb.handles[:ref.link]
	return true
}

// Len returns the number of multibodies.
func (s *MultibodySet) Len() int {
	if s == nil {
		return 0
	}
	return s.multibodies.Len()
}

// Each calls fn for every multibody.
func (s *MultibodySet) Each(fn func(mb *Multibody)) {
	if s == nil || fn == nil {
		return
	}
	s.multibodies.Each(func(_ Handle, mb *Multibody) { fn(mb) })
}
