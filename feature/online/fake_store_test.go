package online

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"customer-merger/core/reconcile"
	"customer-merger/feature/profile/models"

	"github.com/agnivade/levenshtein"
)

type storedRow struct {
	rowID    uint64
	customer *models.Customer
}

// fakeStore is an in-memory Store. Rows inserted later are newer versions.
type fakeStore struct {
	mu sync.Mutex

	reservations []models.Reservation
	guests       []models.Guest
	rows         []storedRow
	nextRow      uint64

	latest    *time.Time
	cursors   map[string]time.Time
	deleteErr error
	insertErr error
	deletes   int
}

func (f *fakeStore) LatestCustomerUpdate(context.Context) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest != nil {
		return *f.latest, true, nil
	}
	var out time.Time
	for _, r := range f.rows {
		if r.customer.Updated.After(out) {
			out = r.customer.Updated
		}
	}
	return out, len(f.rows) > 0, nil
}

func (f *fakeStore) Cursor(_ context.Context, name string) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	position, ok := f.cursors[name]
	return position, ok, nil
}

func (f *fakeStore) SaveCursor(_ context.Context, name string, position time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cursors == nil {
		f.cursors = make(map[string]time.Time)
	}
	f.cursors[name] = position
	return nil
}

func (f *fakeStore) ReservationsAfter(_ context.Context, after time.Time, limit int) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.Updated.After(after) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b models.Reservation) int {
		return cmp.Or(a.Updated.Compare(b.Updated), cmp.Compare(a.ID, b.ID), cmp.Compare(a.Version, b.Version))
	})
	return out[:min(limit, len(out))], nil
}

func (f *fakeStore) CompanionGuests(_ context.Context, minID, maxID int64) ([]models.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Guest
	for _, g := range f.guests {
		if g.ReservationID >= minID && g.ReservationID <= maxID && g.GuestIndex > 0 {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) ReservationsByIDs(_ context.Context, ids []int64) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := make(map[int64]models.Reservation)
	for _, r := range f.reservations {
		if !slices.Contains(ids, r.ID) {
			continue
		}
		if cur, ok := latest[r.ID]; !ok || r.Version > cur.Version {
			latest[r.ID] = r
		}
	}
	var out []models.Reservation
	for _, r := range latest {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b models.Reservation) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (f *fakeStore) GuestsByIDs(_ context.Context, ids []int64) ([]models.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Guest
	for _, g := range f.guests {
		if slices.Contains(ids, g.ID) {
			out = append(out, g)
		}
	}
	return out, nil
}

// newest returns the latest version of every id matching keep, newest first.
func (f *fakeStore) newest(keep func(*models.Customer) bool) []*models.Customer {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var out []*models.Customer
	for i := len(f.rows) - 1; i >= 0; i-- {
		c := f.rows[i].customer
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

func (f *fakeStore) CustomersBySSN(_ context.Context, ssn string) ([]*models.Customer, error) {
	return f.newest(func(c *models.Customer) bool { return c.SSN == ssn }), nil
}

func (f *fakeStore) CustomersNear(_ context.Context, field models.MatchField, value string, k int) ([]*models.Customer, error) {
	return f.newest(func(c *models.Customer) bool {
		var v string
		switch field {
		case models.FieldEmail:
			v = c.Email
		case models.FieldPhone:
			v = c.PhoneNumber
		case models.FieldName:
			v, _ = c.Identity().FullName()
		}
		return v != "" && levenshtein.ComputeDistance(v, value) <= k
	}), nil
}

func (f *fakeStore) CustomersByIDs(_ context.Context, ids []string) ([]*models.Customer, error) {
	return f.newest(func(c *models.Customer) bool { return slices.Contains(ids, c.ID) }), nil
}

func (f *fakeStore) AllCustomers(context.Context) ([]*models.Customer, error) {
	out := f.newest(func(*models.Customer) bool { return true })
	slices.Reverse(out)
	return out, nil
}

func (f *fakeStore) CustomersUpdatedBefore(_ context.Context, before time.Time) ([]*models.Customer, error) {
	out := f.newest(func(c *models.Customer) bool { return c.Updated.Before(before) })
	slices.Reverse(out)
	return out, nil
}

func (f *fakeStore) CustomerVersions(_ context.Context, before time.Time) ([]models.StoredVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.StoredVersion
	for _, r := range f.rows {
		if r.customer.Updated.Before(before) {
			out = append(out, models.StoredVersion{RowID: r.rowID, ID: r.customer.ID, Updated: r.customer.Updated})
		}
	}
	slices.SortFunc(out, func(a, b models.StoredVersion) int {
		return cmp.Or(b.Updated.Compare(a.Updated), cmp.Compare(b.RowID, a.RowID))
	})
	return out, nil
}

func (f *fakeStore) DeleteCustomerRows(_ context.Context, rowIDs []uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = slices.DeleteFunc(f.rows, func(r storedRow) bool { return slices.Contains(rowIDs, r.rowID) })
	return nil
}

// ReplaceCustomers fails as a whole: an error on either step writes nothing.
func (f *fakeStore) ReplaceCustomers(_ context.Context, deleteIDs []string, customers []*models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(deleteIDs) > 0 && f.deleteErr != nil {
		return &reconcile.StepError{Step: reconcile.StepDelete, Err: f.deleteErr}
	}
	if len(customers) > 0 && f.insertErr != nil {
		return &reconcile.StepError{Step: reconcile.StepInsert, Err: f.insertErr}
	}
	if len(deleteIDs) > 0 {
		f.deletes++
		f.rows = slices.DeleteFunc(f.rows, func(r storedRow) bool { return slices.Contains(deleteIDs, r.customer.ID) })
	}
	f.insert(customers)
	return nil
}

// InsertCustomers seeds stored profiles.
func (f *fakeStore) InsertCustomers(_ context.Context, customers []*models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insert(customers)
	return nil
}

func (f *fakeStore) insert(customers []*models.Customer) {
	for _, c := range customers {
		f.nextRow++
		f.rows = append(f.rows, storedRow{rowID: f.nextRow, customer: c.Clone()})
	}
}

// rowsOf counts stored rows of an id.
func (f *fakeStore) rowsOf(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rows {
		if r.customer.ID == id {
			n++
		}
	}
	return n
}

func (f *fakeStore) stored(id string) *models.Customer {
	found := f.newest(func(c *models.Customer) bool { return c.ID == id })
	if len(found) == 0 {
		return nil
	}
	return found[0]
}
