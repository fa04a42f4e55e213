package ecs

import "testing"

type recordSystem struct {
	name string
	log  *[]string
}

func (s recordSystem) Update(w *World) {
	*s.log = append(*s.log, s.name)
}

func TestSchedulerRunsInOrder(t *testing.T) {
	cases := []struct {
		name  string
		order []string
	}{
		{"frame_phases", []string{"drive", "step", "inspect"}},
		{"single", []string{"step"}},
		{"empty", nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var log []string
			s := NewScheduler()
			for _, name := range c.order {
				s.Add(recordSystem{name: name, log: &log})
			}
			s.Add(nil)

			w := NewWorld()
			s.Update(w)
			s.Update(w)

			if len(log) != 2*len(c.order) {
				t.Fatalf("ran %d systems, want %d", len(log), 2*len(c.order))
			}
			for i, name := range log {
				if want := c.order[i%len(c.order)]; name != want {
					t.Fatalf("position %d = %s, want %s", i, name, want)
				}
			}
			if len(s.Systems()) != len(c.order) {
				t.Fatalf("systems = %d, want %d", len(s.Systems()), len(c.order))
			}
		})
	}
}
