package system

import (
	"github.com/milk9111/jointlab/ecs"
	"github.com/milk9111/jointlab/ecs/component"
	"github.com/milk9111/jointlab/physics"
)

// DefaultTimeStep matches ebiten's default 60 TPS.
const DefaultTimeStep = 1.0 / 60.0

// PhysicsStepSystem advances the engine one fixed step and copies body
// poses back into Transform components.
type PhysicsStepSystem struct {
	engine physics.Engine
	dt     float64
	Paused bool
}

func NewPhysicsStepSystem(engine physics.Engine, dt float64) *PhysicsStepSystem {
	if dt <= 0 {
		dt = DefaultTimeStep
	}
	return &PhysicsStepSystem{engine: engine, dt: dt}
}

func (ps *PhysicsStepSystem) Engine() physics.Engine {
	if ps == nil {
		return nil
	}
	return ps.engine
}

func (ps *PhysicsStepSystem) Update(w *ecs.World) {
	if ps == nil || w == nil || ps.engine == nil {
		return
	}
	if !ps.Paused {
		ps.engine.Step(ps.dt)
	}

	ecs.ForEach2(w, component.RigidBodyComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, rb *component.RigidBody, tf *component.Transform) {
		pose, ok := ps.engine.BodyPose(rb.Handle)
		if !ok {
			return
		}
		tf.Position = pose.Translation
		tf.Rotation = pose.Rotation
	})
}
