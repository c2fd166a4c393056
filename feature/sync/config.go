package sync

import "strings"

// Config holds the synchronization settings.
type Config struct {
	// InputDir is where the POS drops its table-file exports.
	InputDir string `mapstructure:"input_dir" default:"./RMan_Export"`
	// OutputDir is where produced CSV files are published.
	OutputDir string `mapstructure:"output_dir" default:"./ESL_Sync"`
	// StateFile is the persistent change-tracking state path.
	StateFile string `mapstructure:"state_file" default:"state.json"`
	// PollIntervalSeconds is the fixed cycle interval.
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds" default:"30"`
	// MaxRetries is how many times a snapshot read is attempted before the
	// source is skipped for the cycle. Exports are written in place, so a
	// read can catch the file mid-write.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// RetryDelaySeconds is the wait between snapshot read attempts.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" default:"2"`
	// ShutdownTimeoutSeconds bounds the wait for an in-flight cycle on
	// shutdown.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" default:"30"`
	// ExcludedFields is a comma-separated list of field names left out of
	// change fingerprints, for bookkeeping columns the POS touches on
	// every export.
	ExcludedFields string `mapstructure:"excluded_fields" default:"TIMESTAMP,MODIFIED"`
	// StockKeyField identifies records in stock tables.
	StockKeyField string `mapstructure:"stock_key_field" default:"PART_NO"`
	// TransactionKeyField identifies records in transaction tables.
	TransactionKeyField string `mapstructure:"transaction_key_field" default:"DOC_NO"`
}

// Excluded returns the excluded field names as a slice.
func (c Config) Excluded() []string {
	var out []string
	for _, f := range strings.Split(c.ExcludedFields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
