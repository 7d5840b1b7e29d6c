package database

import (
	"context"
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ErrTransientConflict marks a write that collided with concurrent activity
// in the store and may succeed when retried later.
var ErrTransientConflict = errors.New("transient write conflict")

// WriteOutcome classifies the result of a store write.
type WriteOutcome int

const (
	// OutcomeSuccess means the write went through.
	OutcomeSuccess WriteOutcome = iota
	// OutcomeAlreadyExists means the row was already there.
	OutcomeAlreadyExists
	// OutcomeTransientConflict means the write should be retried on a later run.
	OutcomeTransientConflict
	// OutcomeFatal means the error must be surfaced.
	OutcomeFatal
)

func (o WriteOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAlreadyExists:
		return "already_exists"
	case OutcomeTransientConflict:
		return "transient_conflict"
	default:
		return "fatal"
	}
}

// ClassifyWriteError maps a driver error to a WriteOutcome.
func ClassifyWriteError(err error) WriteOutcome {
	if err == nil {
		return OutcomeSuccess
	}
	if errors.Is(err, ErrTransientConflict) {
		return OutcomeTransientConflict
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return OutcomeAlreadyExists
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return OutcomeFatal
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return OutcomeAlreadyExists // duplicate entry
		case 1205, 1213:
			return OutcomeTransientConflict // lock wait timeout / deadlock
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return OutcomeAlreadyExists // unique_violation
		case "40001", "40P01", "55P03":
			return OutcomeTransientConflict // serialization/deadlock/lock_not_available
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return OutcomeTransientConflict
		case sqlite3.ErrConstraint:
			if liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
				return OutcomeAlreadyExists
			}
		}
	}

	// Warehouses report rows still in their streaming buffer as a plain message.
	if strings.Contains(strings.ToLower(err.Error()), "streaming buffer") {
		return OutcomeTransientConflict
	}
	return OutcomeFatal
}

// IsTransient reports whether err is worth retrying on a later run.
func IsTransient(err error) bool {
	return ClassifyWriteError(err) == OutcomeTransientConflict
}
