// Package state provides the durable, crash-safe state store for
// incremental change detection.
//
// The store maps (source identity, record key) to the record's last-known
// content fingerprint plus tracking metadata, persisted as a single JSON
// file.
//
// # Crash Safety
//
// Save writes to a temporary file in the same directory and promotes it
// with an atomic rename. After a crash or power loss the canonical file
// always holds either the previous complete state or the new complete
// state, never a truncated mix.
//
// # Corruption Recovery
//
// A corrupt or unreadable state file never blocks synchronization: Load
// logs a warning and starts with empty state, at the cost of re-detecting
// every record as new exactly once.
//
// # Ownership
//
// The store exclusively owns all SourceState entries. The change detector
// clones a source's state, mutates the clone during a pass, and commits it
// back only on full success.
package state
