package database

import (
	"database/sql"
	"sync"

	"customer-merger/core/utils"

	"github.com/agnivade/levenshtein"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// SQLiteDriverName is the sqlite driver with the levenshtein function
// registered on every connection.
const SQLiteDriverName = "sqlite3_levenshtein"

var registerOnce sync.Once

func registerSQLite() {
	registerOnce.Do(func() {
		sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("levenshtein", sqliteLevenshtein, true)
			},
		})
	})
}

// sqliteLevenshtein backs levenshtein(a, b). NULL behaves like an empty string.
func sqliteLevenshtein(a, b any) int64 {
	return int64(levenshtein.ComputeDistance(utils.ToString(a), utils.ToString(b)))
}
