package common

import "github.com/go-gl/mathgl/mgl64"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return mgl64.Vec3{Lerp(a[0], b[0], t), Lerp(a[1], b[1], t), Lerp(a[2], b[2], t)}
}

// Clamp returns v limited to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
