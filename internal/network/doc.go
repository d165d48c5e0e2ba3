// Package network builds the immutable graph view of a duct network.
//
// A Graph is built once per snapshot and then shared read-only between the
// router, the reconciler and the inference engine. Wells and directions are
// stored in ID-sorted arenas and referenced by index, so traversal never
// chases pointers into the snapshot and never mutates it.
//
// # Capacity
//
// Every direction holds SlotCount channel slots. A slot is occupied when a
// duct cable lists it, and blocked when it is unoccupied but its status is
// reserved or damaged. Slot numbers without a slot record count as free.
//
//	free = SlotCount - occupied - blocked
//
// Decommissioned directions always report zero free slots.
//
// # Validation
//
// Build rejects snapshots that cannot describe a physical network with a
// *domain.InvalidTopologyError. Field-level checks (ranges, enum values)
// belong to the validation package and run before Build.
package network
