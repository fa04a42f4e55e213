package ecs

import "github.com/milk9111/jointlab/ecs/component"

// Add stores value as e's component of the given kind, replacing any
// previous value.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !IsAlive(w, e) {
		return component.ErrEntityNotAlive
	}
	w.store(kind.ID(), true).Set(e, value)
	return nil
}

// Get returns e's component of the given kind.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	v, ok := w.store(kind.ID(), false).Get(e).(*T)
	return v, ok
}

// Has reports whether e carries a component of the given kind.
func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	return IsAlive(w, e) && w.store(kind.ID(), false).Has(e)
}

// Remove deletes e's component of the given kind.
func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	return w.store(kind.ID(), false).Remove(e)
}

// First returns the first live entity carrying the given kind.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	for _, e := range w.store(kind.ID(), false).Entities() {
		if IsAlive(w, e) {
			return e, true
		}
	}
	return 0, false
}

// ForEach calls fn for every live entity carrying kind. fn must not add or
// remove components of that kind.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	s := w.store(kind.ID(), false)
	for _, e := range s.Entities() {
		if !IsAlive(w, e) {
			continue
		}
		if v, ok := s.Get(e).(*T); ok {
			fn(e, v)
		}
	}
}

// ForEach2 calls fn for every live entity carrying both kinds.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	sa, sb := w.store(ka.ID(), false), w.store(kb.ID(), false)
	for _, e := range IntersectEntities(sa, sb) {
		if !IsAlive(w, e) {
			continue
		}
		a, okA := sa.Get(e).(*A)
		b, okB := sb.Get(e).(*B)
		if okA && okB {
			fn(e, a, b)
		}
	}
}

// ForEach3 calls fn for every live entity carrying all three kinds.
func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	sa, sb, sc := w.store(ka.ID(), false), w.store(kb.ID(), false), w.store(kc.ID(), false)
	for _, e := range IntersectEntities(sa, sb) {
		if !IsAlive(w, e) || !sc.Has(e) {
			continue
		}
		a, okA := sa.Get(e).(*A)
		b, okB := sb.Get(e).(*B)
		c, okC := sc.Get(e).(*C)
		if okA && okB && okC {
			fn(e, a, b, c)
		}
	}
}
