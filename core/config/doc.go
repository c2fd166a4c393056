// Package config provides configuration management for the ESL middleware.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file, with defaults declared as struct tags on the
// partial configs.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Sync: input/output directories, state file, poll interval, retries
//   - Server: HTTP status server settings (enabled, port, API key)
//   - Storage: S3/MinIO credentials and bucket settings for CSV upload
//   - Watcher: input directory watch settings
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.InputDir)
package config
