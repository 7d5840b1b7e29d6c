// Package store is the gorm-backed record source and customer store.
//
// Reservations are versioned rows keyed by (id, version); reads by id always
// return the highest version. Customers are stored one row per committed
// version: updates are a delete of every row of the id followed by an insert,
// and the dedup pass removes rows left behind when the delete did not happen.
//
// # Approximate lookup
//
// CustomersNear filters with "<fn>(column, ?) <= k" where fn is the configured
// distance function:
//
//   - sqlite: "levenshtein", registered on every connection by core/database.
//   - postgres: "levenshtein" from the fuzzystrmatch extension, created by Migrate.
//   - mysql: a user-installed levenshtein function or UDF.
package store
