package system

import (
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/jointlab/ecs"
	"github.com/milk9111/jointlab/ecs/component"
	"github.com/milk9111/jointlab/ecs/render"
	"github.com/milk9111/jointlab/physics"
	"golang.org/x/image/colornames"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
)

// DrawPhysicsDebug draws the Chipmunk space: shapes and constraints.
func DrawPhysicsDebug(space *cp.Space, w *ecs.World, screen *ebiten.Image) {
	if space == nil || w == nil || screen == nil {
		return
	}
	drawer := &physicsDebugDrawer{
		screen: screen,
		proj:   cameraProjection(w, screen),
	}
	cp.DrawSpace(space, drawer)
}

// DrawColliderDebug outlines every capsule collider from its entity's
// transform. It works with any engine.
func DrawColliderDebug(w *ecs.World, screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}
	drawer := &physicsDebugDrawer{
		screen: screen,
		proj:   cameraProjection(w, screen),
	}
	outline := cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
	ecs.ForEach2(w, component.ColliderComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, c *component.Collider, tf *component.Transform) {
		pose := physics.Isometry{Translation: tf.Position, Rotation: tf.Rotation}
		a := pose.TransformPoint(mgl64.Vec3{0, c.Shape.HalfLength, 0})
		b := pose.TransformPoint(mgl64.Vec3{0, -c.Shape.HalfLength, 0})
		drawer.DrawFatSegment(toCP(a), toCP(b), c.Shape.Radius, outline, outline, nil)
	})
}

// DrawInspectorStats prints the inspector counters in the top left corner.
func DrawInspectorStats(screen *ebiten.Image, backend string, stats InspectorStats) {
	if screen == nil {
		return
	}
	text := fmt.Sprintf("Backend: %s\nInspected: %d\nStale: %d\nDegenerate: %d", backend, stats.Inspected, stats.SkippedStale, stats.SkippedDegenerate)
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}

type physicsDebugDrawer struct {
	screen *ebiten.Image
	proj   render.Projection
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, outline)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, outline)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		d.drawLine(a, b, outline)
		return
	}
	// Capsule sides, offset by the radius along the segment normal.
	n := b.Sub(a).Perp().Normalize().Mult(radius)
	d.drawLine(a.Add(n), b.Add(n), outline)
	d.drawLine(a.Sub(n), b.Sub(n), outline)
	d.drawCircle(a, radius, outline)
	d.drawCircle(b, radius, outline)
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], outline)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	x, y := d.proj.ToScreen(toVec3(pos))
	half := float32(size / 2)
	vector.StrokeLine(d.screen, float32(x)-half, float32(y), float32(x)+half, float32(y), 1, toNRGBA(fill), false)
	vector.StrokeLine(d.screen, float32(x), float32(y)-half, float32(x), float32(y)+half, 1, toNRGBA(fill), false)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_CONSTRAINTS
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	return cp.FColor{R: 0.1, G: 0.6, B: 0.1, A: 0.5}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return toFColor(colornames.Orange)
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, c cp.FColor) {
	x1, y1 := d.proj.ToScreen(toVec3(a))
	x2, y2 := d.proj.ToScreen(toVec3(b))
	vector.StrokeLine(d.screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, toNRGBA(c), true)
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, c cp.FColor) {
	if len(verts) == 0 {
		return
	}
	for i := 0; i < len(verts); i++ {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], c)
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, c cp.FColor) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, c)
}

func toVec3(v cp.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, 0}
}

func toCP(v mgl64.Vec3) cp.Vector {
	return cp.Vector{X: v.X(), Y: v.Y()}
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func toFColor(c color.Color) cp.FColor {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return cp.FColor{R: float32(n.R) / 255, G: float32(n.G) / 255, B: float32(n.B) / 255, A: float32(n.A) / 255}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
