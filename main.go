package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/jointlab/prefabs"
)

func main() {
	chainFile := flag.String("chain", prefabs.DefaultChain, "chain prefab in prefabs/")
	backend := flag.String("backend", backendChipmunk, "physics backend: chipmunk or reference")
	debug := flag.Bool("debug", false, "enable debug mode")
	watch := flag.Bool("watch", false, "rebuild the chain when prefabs/ changes")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("jointlab")

	var watcher *prefabs.Watcher
	if *watch {
		w, err := prefabs.NewWatcher("prefabs", "prefabs/scripts")
		if err != nil {
			log.Printf("watch: %v", err)
		} else {
			watcher = w
			defer watcher.Close()
		}
	}

	game, err := NewGame(*chainFile, *backend, *debug, watcher)
	if err != nil {
		log.Fatal(err)
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
