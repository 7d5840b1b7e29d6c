package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"customer-merger/feature/profile/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	s, err := New(gormDB, "analytics.levenshtein_udf", 100)
	require.NoError(t, err)
	return s, mock
}

func TestCustomersNear_Query(t *testing.T) {
	s, mock := setupMockStore(t)

	rows := sqlmock.NewRows([]string{"row_id", "id", "email", "profile_ids"}).
		AddRow(7, "R-1", "mika@gmail.com", `[{"id":1,"type":"Reservation"}]`)
	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM `customers` WHERE phone_number IS NOT NULL AND phone_number <> '' AND analytics.levenshtein_udf(phone_number, ?) <= ? ORDER BY updated DESC,row_id DESC")).
		WithArgs("+358401234567", 1).
		WillReturnRows(rows)

	got, err := s.CustomersNear(context.Background(), models.FieldPhone, "+358401234567", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "R-1", got[0].ID)
	assert.Equal(t, []models.ProfileReference{{ID: 1, Kind: models.KindReservation}}, got[0].ProfileIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationsAfter_Query(t *testing.T) {
	s, mock := setupMockStore(t)
	hwm := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT * FROM `reservations` WHERE updated > ? ORDER BY updated ASC,id ASC,version ASC LIMIT ?")).
		WithArgs(hwm, 80).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version"}).AddRow(5, 1))

	got, err := s.ReservationsAfter(context.Background(), hwm, 80)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCustomers_Query(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `customers` WHERE id IN (?,?)")).
		WithArgs("R-1", "G-2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, s.DeleteCustomers(context.Background(), []string{"R-1", "G-2"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCustomers_Error(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `customers`").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.DeleteCustomers(context.Background(), []string{"R-1"})
	assert.ErrorIs(t, err, assert.AnError)
}
