package component

import (
	"github.com/d5/tengo/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// RootDriver moves a kinematic root anchor along a scripted path. Script
// names a file under prefabs/scripts.
type RootDriver struct {
	Script string
	// Rest is the anchor position the script offsets from.
	Rest mgl64.Vec3
	// Elapsed is the script clock in seconds.
	Elapsed float64
	Program *tengo.Compiled
	// Failed is set after the first run error so it is logged once.
	Failed bool
}

var RootDriverComponent = NewComponent[RootDriver]()
