package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/jointlab/ecs"
	"github.com/milk9111/jointlab/ecs/component"
	"github.com/milk9111/jointlab/ecs/entity"
	"github.com/milk9111/jointlab/ecs/render"
	"github.com/milk9111/jointlab/ecs/system"
	"github.com/milk9111/jointlab/physics"
	"github.com/milk9111/jointlab/physics/chipmunk"
	"github.com/milk9111/jointlab/prefabs"
)

const (
	backendReference = "reference"
	backendChipmunk  = "chipmunk"
)

// Scene is one built chain with its engine and systems. Reloading builds a
// new Scene and drops the old one.
type Scene struct {
	backend string
	world   *ecs.World
	engine  physics.Engine
	space   *cp.Space
	chain   *entity.Chain

	scheduler *ecs.Scheduler
	step      *system.PhysicsStepSystem
	inspector *system.JointInspectorSystem
	links     *system.RenderSystem
}

func newEngine(backend string, gravity mgl64.Vec3) (physics.Engine, *cp.Space, error) {
	switch strings.ToLower(backend) {
	case "", backendReference:
		return physics.NewWorld(), nil, nil
	case backendChipmunk:
		eng := chipmunk.NewEngine()
		eng.SetGravity(gravity)
		return eng, eng.Space(), nil
	default:
		return nil, nil, fmt.Errorf("unknown physics backend %q", backend)
	}
}

func NewScene(chainFile, backend string) (*Scene, error) {
	spec, err := prefabs.LoadChainSpec(chainFile)
	if err != nil {
		return nil, err
	}

	gravity := mgl64.Vec3{0, -9.81, 0}
	if spec.Gravity != nil {
		gravity = mgl64.Vec3{spec.Gravity[0], spec.Gravity[1], spec.Gravity[2]}
	}
	eng, space, err := newEngine(backend, gravity)
	if err != nil {
		return nil, err
	}

	w := ecs.NewWorld()
	chain, err := entity.BuildChain(w, eng, spec)
	if err != nil {
		return nil, err
	}
	if err := addCamera(w, spec.Camera); err != nil {
		return nil, err
	}

	gizmos := render.NewGizmos()
	s := &Scene{
		backend:   backend,
		world:     w,
		engine:    eng,
		space:     space,
		chain:     chain,
		step:      system.NewPhysicsStepSystem(eng, system.DefaultTimeStep),
		inspector: system.NewJointInspectorSystem(eng, gizmos),
		links:     system.NewRenderSystem(),
	}
	if spec.RayColor != nil && spec.RayColor.Color != nil {
		s.inspector.Color = spec.RayColor.Color
	}

	s.scheduler = ecs.NewScheduler(
		system.NewRaySystem(gizmos),
		system.NewRootDriverSystem(eng, system.DefaultTimeStep),
		s.step,
		s.inspector,
		system.NewCameraSystem(),
	)
	return s, nil
}

func addCamera(w *ecs.World, spec prefabs.CameraSpec) error {
	cam := ecs.CreateEntity(w)
	if err := ecs.Add(w, cam, component.CameraComponent.Kind(), &component.Camera{
		Center:     mgl64.Vec3{spec.Center[0], spec.Center[1], spec.Center[2]},
		Zoom:       spec.Zoom,
		Target:     spec.Target,
		Smoothness: spec.Smoothness,
	}); err != nil {
		return fmt.Errorf("camera: add camera component: %w", err)
	}
	return nil
}

func (s *Scene) Update() {
	s.scheduler.Update(s.world)
}

func (s *Scene) TogglePause() bool {
	s.step.Paused = !s.step.Paused
	return s.step.Paused
}

func (s *Scene) Draw(screen *ebiten.Image, debug bool) {
	screen.Fill(color.NRGBA{R: 0x1b, G: 0x1e, B: 0x24, A: 0xff})
	s.links.Draw(s.world, screen)
	if debug {
		if s.space != nil {
			system.DrawPhysicsDebug(s.space, s.world, screen)
		} else {
			system.DrawColliderDebug(s.world, screen)
		}
	}
	s.scheduler.Draw(s.world, screen)
	if debug {
		system.DrawInspectorStats(screen, s.backend, s.inspector.Stats())
	}
}
