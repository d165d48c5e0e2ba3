// Package service implements the ductnet application layer.
//
// NetworkService ties the engine packages to their surroundings: it loads
// snapshots from a repository.SnapshotSource, validates them, builds and
// caches the network graph per snapshot revision, and runs routing,
// reconciliation and inference on it. Rebuild writes inference results
// back through a repository.ScenarioStore.
//
// # Event System
//
// Operations publish events via EventBus. The watch command subscribes and
// logs them while snapshot files are edited.
//
// # Design Principles
//
// - Engine packages stay pure; the service owns I/O, logging and metrics
// - Graphs are immutable and shared between concurrent inference runs
// - Context-aware for cancellation of snapshot loads
package service
