package logger

// Config holds configuration for logging.
type Config struct {
	// Level is the minimum level to emit (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format selects the encoding: json or console.
	Format string `mapstructure:"format" default:"console"`
	// File is an optional log file path. Logs always go to stderr; when
	// set they are additionally appended to this file.
	File string `mapstructure:"file" default:""`
}
