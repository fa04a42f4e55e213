package ecs

// entityStore tracks entity generations and free ids. Ids start at 1 so the
// zero Entity is never alive.
type entityStore struct {
	gens  []generation
	alive []bool
	free  []entityID
	count int
}

func (s *entityStore) create() Entity {
	var id entityID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.gens = append(s.gens, 0)
		s.alive = append(s.alive, false)
		id = entityID(len(s.gens))
	}
	idx := int(id) - 1
	s.alive[idx] = true
	s.count++
	return makeEntity(id, s.gens[idx])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	idx := int(e.id()) - 1
	s.gens[idx]++
	s.alive[idx] = false
	s.free = append(s.free, e.id())
	s.count--
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	if s == nil || e.id() == 0 || int(e.id()) > len(s.gens) {
		return false
	}
	idx := int(e.id()) - 1
	return s.alive[idx] && s.gens[idx] == e.generation()
}

func (s *entityStore) list() []Entity {
	out := make([]Entity, 0, s.count)
	for i, ok := range s.alive {
		if ok {
			out = append(out, makeEntity(entityID(i+1), s.gens[i]))
		}
	}
	return out
}
