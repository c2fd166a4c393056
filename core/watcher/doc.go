// Package watcher turns input-directory file events into debounced sync
// triggers.
//
// The POS writes exports in bursts, one file at a time. The watcher
// coalesces a burst into a single signal delivered after a quiet period,
// so the orchestrator runs one early cycle per export instead of one per
// file.
package watcher
