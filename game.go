package main

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/jointlab/prefabs"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type Game struct {
	frames int

	chainFile string
	backend   string
	debug     bool

	scene   *Scene
	watcher *prefabs.Watcher
}

func NewGame(chainFile, backend string, debug bool, watcher *prefabs.Watcher) (*Game, error) {
	scene, err := NewScene(chainFile, backend)
	if err != nil {
		return nil, err
	}
	return &Game{
		chainFile: chainFile,
		backend:   backend,
		debug:     debug,
		scene:     scene,
		watcher:   watcher,
	}, nil
}

// reload rebuilds the scene. A failed build keeps the current one running.
func (g *Game) reload(reason string) {
	scene, err := NewScene(g.chainFile, g.backend)
	if err != nil {
		log.Printf("reload (%s): %v", reason, err)
		return
	}
	log.Printf("reload (%s): rebuilt %s", reason, scene.chain.Name)
	g.scene = scene
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	changed := ""
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			changed = name
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("watch: %v", err)
		default:
			if changed != "" {
				g.reload(changed)
			}
			return
		}
	}
}

func (g *Game) Update() error {
	g.frames++
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reload("key")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.scene.TogglePause()
	}

	g.scene.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen, g.debug)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Frames: %d    FPS: %.2f", g.frames, ebiten.ActualFPS()), 10, baseHeight-20)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
