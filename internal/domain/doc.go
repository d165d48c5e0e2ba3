// Package domain defines the core domain types for the ductnet cable duct
// network engine.
//
// This package contains the entities and value objects describing a
// telecom duct network as it is recorded, and the results the engine
// derives from it.
//
// # Network Records
//
// Well is a manhole or junction point. ChannelDirection is a physical run
// between two wells holding a fixed number of channel slots. ChannelSlot is
// one conduit inside a direction, occupied by at most one cable. Cable is a
// routed cable: duct cables list the slots they pass through, aerial and
// ground cables carry a polyline instead.
//
// Snapshot bundles all records read at one point in time. The engine never
// mixes records from different snapshots.
//
// # Inventory
//
// InventoryObservation is a physical cable count reported at a well for one
// adjacent direction. UnaccountedValue is the signed difference between the
// observed count and the number of slots occupied by recorded cables.
//
// # Inference
//
// AssumedRoute is a cable route proposed to explain positive unaccounted
// values. Variant selects how aggressively routes are proposed.
//
// # Errors
//
// InvalidTopologyError marks malformed input. NoPathFoundError and
// RouteOverlapError mark the absence of a solution. AmbiguousObservationWarning
// is informational and never returned as an error.
//
// # Design Principles
//
// - Identifiers are integers; records reference each other by ID
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
package domain
