package ecs

import "github.com/milk9111/jointlab/ecs/component"

// World owns entities and their component stores.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity removes every component of e and marks it dead.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.Remove(e)
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func IsAlive(w *World, e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns all live entities in id order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.list()
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	if w == nil {
		return nil
	}
	s, ok := w.stores[id]
	if !ok && create {
		if w.stores == nil {
			w.stores = make(map[component.ComponentID]*SparseSet)
		}
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}
