// Package physics holds the articulated-joint data model (bodies, capsules,
// generic joints with per-axis locks, limits and motors, multibodies) and
// the Engine interface the chain is built against.
//
// Engine-owned state lives in generational arenas. Pointers returned by
// Arena.Get, MultibodySet.Get and Engine.MultibodyJoint stay valid until the
// next insertion into the same store, so callers resolve handles every frame
// instead of caching pointers.
package physics
