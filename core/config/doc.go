// Package config provides configuration management for the customer merger.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from `default` struct tags and the
// result is checked against `validate` tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL, PostgreSQL or SQLite connection details
//   - Storage: S3/MinIO credentials and the snapshot bucket
//   - Log: Logging level, format and file rotation
//   - Redis: distributed run lock (disabled when no address is set)
//   - Merge: batch size, time budget and write chunking of the merge job
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Merge.BatchSize)
package config
