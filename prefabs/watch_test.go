package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevantEvents(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "prefabs/chain.yaml", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "prefabs/chain.YML", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "prefabs/arm.toml", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "prefabs/scripts/root_sway.tengo", Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: "prefabs/chain.yaml", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "prefabs/notes.txt", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "prefabs/chain.yaml.swp", Op: fsnotify.Write}, false},
	}

	for _, tc := range tests {
		t.Run(tc.event.String(), func(t *testing.T) {
			if got := relevant(tc.event); got != tc.want {
				t.Fatalf("relevant = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestWatcherReportsChangedSpec(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "chain.yaml")
	if err := os.WriteFile(path, []byte("name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		if got != path {
			t.Fatalf("event for %s, want %s", got, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no event for %s", path)
	}
}

func TestWatcherCloseClosesChannels(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := <-w.Events; ok {
		t.Fatalf("events channel still open")
	}
	_ = w.Close()
}
