package system

import (
	"image/color"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/jointlab/ecs"
	"github.com/milk9111/jointlab/ecs/component"
	"github.com/milk9111/jointlab/physics"
	"golang.org/x/image/colornames"
)

var linkPalette = []color.Color{
	colornames.Steelblue,
	colornames.Seagreen,
	colornames.Indianred,
	colornames.Goldenrod,
	colornames.Mediumpurple,
}

// RenderSystem fills every link capsule. It only draws; it is not part of
// the update scheduler.
type RenderSystem struct {
	Palette []color.Color
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{Palette: linkPalette}
}

type drawnLink struct {
	index int
	shape physics.Capsule
	pose  physics.Isometry
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}
	proj := cameraProjection(w, screen)

	var links []drawnLink
	ecs.ForEach3(w, component.ColliderComponent.Kind(), component.TransformComponent.Kind(), component.ChainLinkComponent.Kind(), func(e ecs.Entity, c *component.Collider, tf *component.Transform, cl *component.ChainLink) {
		links = append(links, drawnLink{
			index: cl.Index,
			shape: c.Shape,
			pose:  physics.Isometry{Translation: tf.Position, Rotation: tf.Rotation},
		})
	})
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].index < links[j].index
	})

	for _, l := range links {
		clr := color.Color(colornames.White)
		if len(r.Palette) > 0 {
			clr = r.Palette[l.index%len(r.Palette)]
		}
		top := l.pose.TransformPoint(mgl64.Vec3{0, l.shape.HalfLength, 0})
		bottom := l.pose.TransformPoint(mgl64.Vec3{0, -l.shape.HalfLength, 0})
		x0, y0 := proj.ToScreen(top)
		x1, y1 := proj.ToScreen(bottom)
		radius := float32(proj.Scale(l.shape.Radius))

		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1), 2*radius, clr, true)
		vector.FillCircle(screen, float32(x0), float32(y0), radius, clr, true)
		vector.FillCircle(screen, float32(x1), float32(y1), radius, clr, true)
	}
}
