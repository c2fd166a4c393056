// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates seamlessly with the Fiber web framework.
//
// # Context Awareness
//
// Per-table sync passes tag their log lines with the source table via
// WithSource. For HTTP requests the WithRayID helper extracts the RayID
// from a Fiber context and attaches it to the log entry, ensuring that all
// logs related to a specific request can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//   - File: optional additional log file
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Middleware started")
//
//	// In a per-table pass:
//	l := logger.WithSource(log, table.Name)
//	l.Error("Snapshot read failed", zap.Error(err))
package logger
