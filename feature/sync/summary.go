package sync

import "time"

// SourceResult is the outcome of one table's pass within a cycle.
type SourceResult struct {
	// Source is the table file name.
	Source string `json:"source"`
	// Kind is the detected table kind (STOCK or TRANSACTION).
	Kind string `json:"kind"`
	// Records is the number of usable records read from the snapshot.
	Records int `json:"records"`

	New       int `json:"new"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`

	// CSVPath is the produced file, empty when the pass had nothing to
	// synchronize.
	CSVPath string `json:"csv_path,omitempty"`
	// Error is set when the pass failed; the rest of the cycle continues.
	Error string `json:"error,omitempty"`
}

// CycleSummary describes one complete synchronization cycle.
type CycleSummary struct {
	CycleID   string         `json:"cycle_id"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Sources   []SourceResult `json:"sources"`

	New       int `json:"new"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`

	// CSVFiles is how many CSV files the cycle produced.
	CSVFiles int `json:"csv_files"`
	// Errors collects per-source failures. Empty means a clean cycle.
	Errors []string `json:"errors,omitempty"`
}

// HasErrors reports whether any source failed during the cycle.
func (s *CycleSummary) HasErrors() bool {
	return len(s.Errors) > 0
}

// Stats are the service's lifetime counters.
type Stats struct {
	StartedAt        time.Time `json:"started_at"`
	TotalCycles      int64     `json:"total_cycles"`
	SuccessfulCycles int64     `json:"successful_cycles"`
	FailedCycles     int64     `json:"failed_cycles"`
	RecordsProcessed int64     `json:"records_processed"`
	CSVFilesCreated  int64     `json:"csv_files_created"`
	LastCycleAt      time.Time `json:"last_cycle_at,omitzero"`
	LastError        string    `json:"last_error,omitempty"`
}
