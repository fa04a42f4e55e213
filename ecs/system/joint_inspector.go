package system

import (
	"image/color"

	"github.com/milk9111/jointlab/ecs"
	"github.com/milk9111/jointlab/ecs/component"
	"github.com/milk9111/jointlab/ecs/render"
	"github.com/milk9111/jointlab/physics"
	"golang.org/x/image/colornames"
)

// InspectLinkIndex is the multibody link whose joint frames are corrected.
// Link 0 is the root and has no joint.
const InspectLinkIndex = 1

// MultibodyResolver resolves weak joint handles to engine-owned multibodies.
type MultibodyResolver interface {
	MultibodyJoint(h physics.MultibodyJointHandle) (*physics.Multibody, int, bool)
}

// InspectorStats counts what the last Update did. Inspected counts
// multibodies, so several handles into one chain inspect it once.
type InspectorStats struct {
	Inspected         int
	SkippedStale      int
	SkippedDegenerate int
}

// JointInspectorSystem runs after the physics step. For every joint handle
// it resets the joint frame rotations of one link to identity and draws the
// link's joint axis in world space. Resetting is idempotent.
type JointInspectorSystem struct {
	engine    MultibodyResolver
	gizmos    *render.Gizmos
	LinkIndex int
	Color     color.Color

	stats InspectorStats
}

func NewJointInspectorSystem(engine MultibodyResolver, gizmos *render.Gizmos) *JointInspectorSystem {
	return &JointInspectorSystem{
		engine:    engine,
		gizmos:    gizmos,
		LinkIndex: InspectLinkIndex,
		Color:     colornames.White,
	}
}

// Stats returns the counters of the most recent Update.
func (s *JointInspectorSystem) Stats() InspectorStats {
	if s == nil {
		return InspectorStats{}
	}
	return s.stats
}

func (s *JointInspectorSystem) Update(w *ecs.World) {
	if s == nil || w == nil || s.engine == nil {
		return
	}
	s.stats = InspectorStats{}
	seen := make(map[*physics.Multibody]struct{})

	ecs.ForEach(w, component.MultibodyJointHandleComponent.Kind(), func(e ecs.Entity, jh *component.MultibodyJointHandle) {
		mb, _, ok := s.engine.MultibodyJoint(jh.Handle)
		if !ok {
			s.stats.SkippedStale++
			return
		}
		if _, dup := seen[mb]; dup {
			return
		}
		seen[mb] = struct{}{}
		if mb.NumLinks() < 2 {
			s.stats.SkippedDegenerate++
			return
		}
		link, ok := mb.Link(s.LinkIndex)
		if !ok {
			s.stats.SkippedDegenerate++
			return
		}

		link.Joint.ResetFrameRotations()

		origin := link.LocalToWorld.Translation
		dir := link.LocalToWorld.Rotation.Rotate(link.Joint.LocalAxis2())
		s.gizmos.Ray(origin, dir, s.Color)
		s.stats.Inspected++
	})
}
