// Package sync orchestrates the synchronization cycle and exposes its
// status over HTTP.
//
// A cycle discovers table files in the input directory, reads each
// snapshot (with retries, since the POS writes exports in place), runs
// change detection against the persistent state, and publishes the new and
// updated records as a timestamped CSV per table. Per-table failures are
// collected into the cycle summary; they never abort the rest of the
// cycle.
//
// # Single Flight
//
// At most one cycle runs at a time. The guard covers both the poll loop
// and the manual POST /sync/run endpoint: whichever comes second gets
// ErrCycleInProgress (HTTP 409) immediately rather than queueing.
//
// # Routes
//
//   - GET  /sync/status          service state and lifetime counters
//   - POST /sync/run             trigger a synchronous cycle
//   - GET  /sync/state           per-source tracking summary
//   - GET  /sync/state/:source   one source's tracking summary
package sync
