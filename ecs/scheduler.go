package ecs

// System updates a world each frame.
type System interface {
	Update(w *World)
}

// Scheduler runs systems in the order they were added. The order is the
// frame phase order; systems that read state written by another system
// must be added after it.
type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	copied := make([]System, 0, len(systems))
	for _, system := range systems {
		if system != nil {
			copied = append(copied, system)
		}
	}
	return &Scheduler{systems: copied}
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems = append(s.systems, system)
}

func (s *Scheduler) Update(w *World) {
	if s == nil || w == nil {
		return
	}
	for _, system := range s.systems {
		system.Update(w)
	}
}

func (s *Scheduler) Systems() []System {
	systems := make([]System, 0, len(s.systems))
	return append(systems, s.systems...)
}
