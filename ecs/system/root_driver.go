package system

import (
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/jointlab/ecs"
	"github.com/milk9111/jointlab/ecs/component"
	"github.com/milk9111/jointlab/physics"
	"github.com/milk9111/jointlab/prefabs"
)

// Script globals. t is read-only input; x, y and z start at the rest
// position and are read back as the anchor position.
const (
	driverTime = "t"
	driverX    = "x"
	driverY    = "y"
	driverZ    = "z"
)

// CompileRootDriver loads and compiles a root driver script.
func CompileRootDriver(name string) (*tengo.Compiled, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript(src)
	for _, g := range []string{driverTime, driverX, driverY, driverZ} {
		_ = script.Add(g, 0.0)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}
	return compiled, nil
}

// KinematicPoser moves kinematic bodies.
type KinematicPoser interface {
	SetKinematicPose(body physics.BodyHandle, pose physics.Isometry) error
}

// RootDriverSystem runs each root driver script once per frame and moves
// the anchor body to the position it returns. A failing script leaves the
// anchor where it was.
type RootDriverSystem struct {
	engine KinematicPoser
	dt     float64
}

func NewRootDriverSystem(engine KinematicPoser, dt float64) *RootDriverSystem {
	if dt <= 0 {
		dt = DefaultTimeStep
	}
	return &RootDriverSystem{engine: engine, dt: dt}
}

func (s *RootDriverSystem) Update(w *ecs.World) {
	if s == nil || w == nil || s.engine == nil {
		return
	}

	ecs.ForEach2(w, component.RootDriverComponent.Kind(), component.RigidBodyComponent.Kind(), func(e ecs.Entity, drv *component.RootDriver, rb *component.RigidBody) {
		if drv.Program == nil {
			return
		}
		drv.Elapsed += s.dt

		pos, err := runDriver(drv.Program, drv.Elapsed, drv.Rest)
		if err == nil {
			err = s.engine.SetKinematicPose(rb.Handle, physics.Translation(pos))
		}
		if err != nil {
			if !drv.Failed {
				log.Printf("root driver: entity=%d script %s: %v", e, drv.Script, err)
			}
			drv.Failed = true
			return
		}
		drv.Failed = false
	})
}

func runDriver(compiled *tengo.Compiled, t float64, rest mgl64.Vec3) (mgl64.Vec3, error) {
	if err := compiled.Set(driverTime, t); err != nil {
		return rest, err
	}
	for i, g := range []string{driverX, driverY, driverZ} {
		if err := compiled.Set(g, rest[i]); err != nil {
			return rest, err
		}
	}
	if err := compiled.Run(); err != nil {
		return rest, err
	}

	var out mgl64.Vec3
	for i, g := range []string{driverX, driverY, driverZ} {
		v, err := objectToFloat(compiled.Get(g).Object())
		if err != nil {
			return rest, fmt.Errorf("%s: %w", g, err)
		}
		out[i] = v
	}
	return out, nil
}

func objectToFloat(obj tengo.Object) (float64, error) {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value, nil
	case *tengo.Int:
		return float64(v.Value), nil
	default:
		return 0, fmt.Errorf("want a number, got %s", obj.TypeName())
	}
}
