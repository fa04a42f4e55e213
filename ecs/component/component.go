// Package component declares the component types attached to chain
// entities and the typed kinds used to look them up in an ecs.World.
package component

import (
	"errors"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// ComponentID keys a component store inside a world. Zero is unassigned.
type ComponentID uint32

var nextComponentID atomic.Uint32

// ComponentKind ties a component ID to its Go type so accessors can cast
// stored values without a type switch.
type ComponentKind[T any] struct {
	id ComponentID
}

// NewComponentKind allocates a fresh ID. Call it once per component type,
// at package init.
func NewComponentKind[T any]() ComponentKind[T] {
	return ComponentKind[T]{id: ComponentID(nextComponentID.Add(1))}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

// ComponentHandle is the exported package-level value for a component type,
// e.g. TransformComponent.
type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}
