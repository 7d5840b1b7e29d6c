package online

import (
	"context"
	"time"

	"customer-merger/feature/profile/models"
)

// Store is the persistence boundary of the controller. feature/store.Store
// implements it.
type Store interface {
	LatestCustomerUpdate(ctx context.Context) (time.Time, bool, error)
	Cursor(ctx context.Context, name string) (time.Time, bool, error)
	SaveCursor(ctx context.Context, name string, position time.Time) error
	ReservationsAfter(ctx context.Context, after time.Time, limit int) ([]models.Reservation, error)
	CompanionGuests(ctx context.Context, minID, maxID int64) ([]models.Guest, error)
	ReservationsByIDs(ctx context.Context, ids []int64) ([]models.Reservation, error)
	GuestsByIDs(ctx context.Context, ids []int64) ([]models.Guest, error)

	CustomersBySSN(ctx context.Context, ssn string) ([]*models.Customer, error)
	CustomersNear(ctx context.Context, field models.MatchField, value string, k int) ([]*models.Customer, error)
	CustomersByIDs(ctx context.Context, ids []string) ([]*models.Customer, error)
	AllCustomers(ctx context.Context) ([]*models.Customer, error)
	CustomersUpdatedBefore(ctx context.Context, before time.Time) ([]*models.Customer, error)
	CustomerVersions(ctx context.Context, before time.Time) ([]models.StoredVersion, error)

	DeleteCustomerRows(ctx context.Context, rowIDs []uint64) error
	// ReplaceCustomers deletes every row of deleteIDs and inserts customers
	// atomically. Errors are *reconcile.StepError values.
	ReplaceCustomers(ctx context.Context, deleteIDs []string, customers []*models.Customer) error
}
