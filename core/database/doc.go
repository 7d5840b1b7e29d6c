// Package database handles database connections, error classification and
// schema inspection.
//
// It provides a wrapper around GORM to configure MySQL, PostgreSQL or SQLite
// connections based on the application's configuration. SQLite connections
// use a driver that registers a levenshtein(a, b) SQL function, so remote
// approximate lookups work the same way in tests as against a warehouse that
// ships the function.
//
// # Write Errors
//
// ClassifyWriteError maps driver errors (MySQL, PostgreSQL, SQLite) and
// warehouse messages to a WriteOutcome, so callers can branch on transient
// conflicts instead of parsing messages.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns report the live columns of a table and
// are used by the schema check command.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "customers", []string{"id", "profile_ids"})
package database
