// Package repository defines the data access interfaces for ductnet.
//
// Network records are read through SnapshotSource, which both the snapshot
// file (codec.FileSource) and the database implement. Inference runs are
// stored through ScenarioStore. The database implementation is in the
// sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation stores every record kind in its own table and
// keeps list-valued cable fields as JSON. Imports replace all records in a
// single transaction. The schema is migrated on startup.
//
// The repository does not check topology: callers build a network.Graph
// from the loaded snapshot, which reports malformed records.
package repository
