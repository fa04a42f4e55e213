package system

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/jointlab/common"
	"github.com/milk9111/jointlab/ecs"
	"github.com/milk9111/jointlab/ecs/component"
	"github.com/milk9111/jointlab/ecs/render"
)

type CameraSystem struct {
	camEntity    ecs.Entity
	targetEntity ecs.Entity
}

func NewCameraSystem() *CameraSystem {
	return &CameraSystem{}
}

// Update eases the camera centre towards its target link.
func (cs *CameraSystem) Update(w *ecs.World) {
	if !ecs.IsAlive(w, cs.camEntity) {
		camEntity, ok := ecs.First(w, component.CameraComponent.Kind())
		if !ok {
			return
		}
		cs.camEntity = camEntity
		cs.targetEntity = 0
	}
	cam, ok := ecs.Get(w, cs.camEntity, component.CameraComponent.Kind())
	if !ok || cam.Target == "" {
		return
	}

	if !ecs.IsAlive(w, cs.targetEntity) {
		cs.targetEntity = findLinkByName(w, cam.Target)
	}
	target, ok := ecs.Get(w, cs.targetEntity, component.TransformComponent.Kind())
	if !ok {
		return
	}

	smooth := cam.Smoothness
	if smooth <= 0 {
		smooth = 1
	}
	cam.Center = common.LerpVec3(cam.Center, target.Position, common.Clamp(smooth, 0, 1))
}

func findLinkByName(w *ecs.World, name string) ecs.Entity {
	var found ecs.Entity
	ecs.ForEach(w, component.ChainLinkComponent.Kind(), func(e ecs.Entity, link *component.ChainLink) {
		if !found.Valid() && link.Name == name {
			found = e
		}
	})
	return found
}

// cameraProjection builds the screen projection from the first camera.
func cameraProjection(w *ecs.World, screen *ebiten.Image) render.Projection {
	b := screen.Bounds()
	p := render.Projection{Width: float64(b.Dx()), Height: float64(b.Dy())}
	if camEntity, ok := ecs.First(w, component.CameraComponent.Kind()); ok {
		if cam, ok := ecs.Get(w, camEntity, component.CameraComponent.Kind()); ok {
			p.Center = cam.Center
			p.Zoom = cam.Zoom
		}
	}
	return p
}
