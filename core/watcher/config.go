package watcher

// Config holds configuration for the input directory watcher.
type Config struct {
	// Enabled turns on event-driven early cycles. The fixed poll interval
	// still applies either way.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// DebounceSeconds is how long to wait after the last file event before
	// signalling, so multi-file exports trigger a single cycle.
	DebounceSeconds int `mapstructure:"debounce_seconds" default:"2"`
}
