package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"customer-merger/core/database"
	"customer-merger/feature/profile/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// idChunk bounds the size of IN lists.
const idChunk = 500

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Store reads source records and reads and writes customer profiles.
type Store struct {
	db       *gorm.DB
	distance string
	pageSize int
}

// New creates a store. distanceFunction is the SQL function computing the
// edit distance between two strings and is inlined into queries, so it must
// be a plain, optionally schema-qualified identifier.
func New(db *gorm.DB, distanceFunction string, pageSize int) (*Store, error) {
	if !identifierPattern.MatchString(distanceFunction) {
		return nil, fmt.Errorf("invalid distance function name %q", distanceFunction)
	}
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &Store{db: db, distance: distanceFunction, pageSize: pageSize}, nil
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates the tables. On postgres it also enables the
// fuzzystrmatch extension providing levenshtein.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS fuzzystrmatch").Error; err != nil {
			return fmt.Errorf("failed to enable fuzzystrmatch: %w", err)
		}
	}
	if err := db.AutoMigrate(&models.Reservation{}, &models.Guest{}, &models.CustomerRow{}, &models.MergeCursor{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// CheckSchema returns the missing columns per table. Tables without missing
// columns are left out.
func (s *Store) CheckSchema(ctx context.Context) (map[string][]string, error) {
	db := s.db.WithContext(ctx)
	report := make(map[string][]string)
	for _, model := range []any{&models.Reservation{}, &models.Guest{}, &models.CustomerRow{}, &models.MergeCursor{}} {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}
		table := stmt.Schema.Table
		missing, err := database.MissingColumns(db, table, stmt.Schema.DBNames)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			report[table] = missing
		}
	}
	return report, nil
}

// LatestCustomerUpdate returns the highest committed customer timestamp.
// ok is false when the table is empty.
func (s *Store) LatestCustomerUpdate(ctx context.Context) (latest time.Time, ok bool, err error) {
	var row models.CustomerRow
	err = s.db.WithContext(ctx).Select("updated").Order("updated DESC").Limit(1).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read latest customer update: %w", err)
	}
	return row.Updated, true, nil
}

// Cursor returns the saved position of the named job. ok is false when none
// was saved yet.
func (s *Store) Cursor(ctx context.Context, name string) (position time.Time, ok bool, err error) {
	var row models.MergeCursor
	err = s.db.WithContext(ctx).Where("name = ?", name).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read cursor %s: %w", name, err)
	}
	return row.Position, true, nil
}

// SaveCursor stores the position of the named job, replacing the previous one.
func (s *Store) SaveCursor(ctx context.Context, name string, position time.Time) error {
	row := models.MergeCursor{Name: name, Position: position}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"position"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save cursor %s: %w", name, err)
	}
	return nil
}
