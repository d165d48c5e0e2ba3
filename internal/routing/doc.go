// Package routing finds shortest feasible cable routes through a duct network.
//
// All searches share one Dijkstra core, ShortestTree, weighted by direction
// length. Ties between equal-length paths are broken by fewer hops, then by
// the lexicographically smaller sequence of well display numbers, then by
// well IDs, so every search is reproducible.
//
// # Routes
//
// FindPath returns the best path through directions with a free slot.
// Extend appends a leg to an existing route without reusing any of its
// directions. Session tracks the legs of one cable as it is built waypoint
// by waypoint and can undo the last leg.
//
// The router never changes slot occupancy. AllocateSlots reports which slot
// a route would take on each direction so the caller can persist the cable.
package routing
