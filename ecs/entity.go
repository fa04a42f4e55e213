package ecs

import "strconv"

// Entity packs a slot id in the low 32 bits and the slot's generation in the
// high 32 bits. The zero Entity is never handed out.
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

// String renders the entity as id@generation, e.g. "3@1".
func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.id()), 10) + "@" + strconv.FormatUint(uint64(e.generation()), 10)
}

// Valid reports whether e was produced by CreateEntity. It says nothing
// about liveness; use IsAlive for that.
func (e Entity) Valid() bool {
	return e > 0
}
