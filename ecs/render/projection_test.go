package render

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestProjectionRoundTrip(t *testing.T) {
	p := Projection{Center: mgl64.Vec3{1, -0.5, 0}, Zoom: 100, Width: 640, Height: 480}

	tests := []struct {
		name   string
		world  mgl64.Vec3
		sx, sy float64
	}{
		{name: "center", world: mgl64.Vec3{1, -0.5, 0}, sx: 320, sy: 240},
		{name: "up is up", world: mgl64.Vec3{1, 0.5, 0}, sx: 320, sy: 140},
		{name: "right", world: mgl64.Vec3{2, -0.5, 0}, sx: 420, sy: 240},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y := p.ToScreen(tc.world)
			if math.Abs(x-tc.sx) > 1e-9 || math.Abs(y-tc.sy) > 1e-9 {
				t.Fatalf("ToScreen = (%v, %v), want (%v, %v)", x, y, tc.sx, tc.sy)
			}
			if back := p.ToWorld(x, y); !back.ApproxEqualThreshold(tc.world, 1e-9) {
				t.Fatalf("ToWorld = %v, want %v", back, tc.world)
			}
		})
	}

	if got := (Projection{}).Scale(1); got != DefaultZoom {
		t.Fatalf("default scale = %v", got)
	}
}
