package physics

// Handle is a generational index into an Arena. The zero Handle never
// resolves.
type Handle struct {
	Index      uint32
	Generation uint32
}

// Valid reports whether the handle could refer to a live slot.
func (h Handle) Valid() bool {
	return h.Generation > 0
}

type arenaSlot[T any] struct {
	value T
	gen   uint32
	alive bool
}

// Arena owns values of T and hands out generational handles to them.
// Removing a value bumps the slot generation so old handles go stale.
type Arena[T any] struct {
	slots []arenaSlot[T]
	free  []uint32
	count int
}

// Insert stores v and returns its handle.
func (a *Arena[T]) Insert(v T) Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, arenaSlot[T]{})
		idx = uint32(len(a.slots) - 1)
	}
	slot := &a.slots[idx]
	slot.gen++
	slot.value = v
	slot.alive = true
	a.count++
	return Handle{Index: idx, Generation: slot.gen}
}

// Get returns a pointer to the value behind h, or false when h is stale.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if a == nil || !h.Valid() || int(h.Index) >= len(a.slots) {
		return nil, false
	}
	slot := &a.slots[h.Index]
	if !slot.alive || slot.gen != h.Generation {
		return nil, false
	}
	return &slot.value, true
}

// Contains reports whether h resolves.
func (a *Arena[T]) Contains(h Handle) bool {
	_, ok := a.Get(h)
	return ok
}

// Remove deletes the value behind h. It returns false for stale handles.
func (a *Arena[T]) Remove(h Handle) bool {
	if _, ok := a.Get(h); !ok {
		return false
	}
	slot := &a.slots[h.Index]
	var zero T
	slot.value = zero
	slot.alive = false
	a.free = append(a.free, h.Index)
	a.count--
	return true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	if a == nil {
		return 0
	}
	return a.count
}

// Each calls fn for every live value in slot order.
func (a *Arena[T]) Each(fn func(h Handle, v *T)) {
	if a == nil || fn == nil {
		return
	}
	for i := range a.slots {
		slot := &a.slots[i]
		if !slot.alive {
			continue
		}
		fn(Handle{Index: uint32(i), Generation: slot.gen}, &slot.value)
	}
}
