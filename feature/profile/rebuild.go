package profile

import (
	"errors"
	"fmt"

	"customer-merger/feature/profile/models"
)

// ErrUnknownReference is returned when a profile references a record kind
// that cannot be replayed. It signals corrupted stored data.
var ErrUnknownReference = errors.New("unknown profile reference kind")

// Lookup resolves references back to their source records.
type Lookup interface {
	Reservation(id int64) (models.Reservation, bool)
	Guest(id int64) (models.Guest, bool)
}

// Rebuild replays refs in order and returns the resulting profile. Records
// the lookup cannot find are skipped. The result is nil when nothing could be
// replayed.
func Rebuild(refs []models.ProfileReference, lookup Lookup) (*models.Customer, error) {
	var out *models.Customer

	for _, ref := range refs {
		switch ref.Kind {
		case models.KindReservation:
			r, ok := lookup.Reservation(ref.ID)
			if !ok {
				continue
			}
			if out == nil {
				out, _ = FromReservation(r)
			} else {
				out = MergeReservation(out, r)
			}

		case models.KindGuest:
			g, ok := lookup.Guest(ref.ID)
			if !ok {
				continue
			}
			r, ok := lookup.Reservation(g.ReservationID)
			if !ok {
				continue
			}
			if out == nil {
				out, _ = FromGuest(r.Stay(), g)
			} else {
				out = MergeGuest(out, r.Stay(), g)
			}

		case models.KindReservationGuest:
			if out == nil {
				continue
			}
			g, ok := lookup.Guest(ref.ID)
			if !ok {
				continue
			}
			var stay models.Stay
			if r, ok := lookup.Reservation(g.ReservationID); ok {
				stay = r.Stay()
			}
			out = AddCompanion(out, stay, g)

		default:
			return nil, fmt.Errorf("%w: %q (id %d)", ErrUnknownReference, ref.Kind, ref.ID)
		}
	}
	return out, nil
}

// RecordSet is an in-memory Lookup. Only the highest version of each
// reservation is kept.
type RecordSet struct {
	reservations map[int64]models.Reservation
	guests       map[int64]models.Guest
}

// NewRecordSet creates a RecordSet holding the given records.
func NewRecordSet(reservations []models.Reservation, guests []models.Guest) *RecordSet {
	rs := &RecordSet{
		reservations: make(map[int64]models.Reservation, len(reservations)),
		guests:       make(map[int64]models.Guest, len(guests)),
	}
	rs.AddReservations(reservations...)
	rs.AddGuests(guests...)
	return rs
}

// AddReservations adds reservations, replacing older versions.
func (rs *RecordSet) AddReservations(reservations ...models.Reservation) {
	for _, r := range reservations {
		if cur, ok := rs.reservations[r.ID]; ok && cur.Version > r.Version {
			continue
		}
		rs.reservations[r.ID] = r
	}
}

// AddGuests adds guest records.
func (rs *RecordSet) AddGuests(guests ...models.Guest) {
	for _, g := range guests {
		rs.guests[g.ID] = g
	}
}

// Reservation implements Lookup.
func (rs *RecordSet) Reservation(id int64) (models.Reservation, bool) {
	r, ok := rs.reservations[id]
	return r, ok
}

// Guest implements Lookup.
func (rs *RecordSet) Guest(id int64) (models.Guest, bool) {
	g, ok := rs.guests[id]
	return g, ok
}

// References splits refs into the reservation and guest ids a Lookup needs to
// replay them. The reservations guests belong to are not included.
func References(refs []models.ProfileReference) (reservationIDs, guestIDs []int64) {
	seenR := make(map[int64]bool)
	seenG := make(map[int64]bool)
	for _, ref := range refs {
		switch ref.Kind {
		case models.KindReservation:
			if !seenR[ref.ID] {
				seenR[ref.ID] = true
				reservationIDs = append(reservationIDs, ref.ID)
			}
		case models.KindGuest, models.KindReservationGuest:
			if !seenG[ref.ID] {
				seenG[ref.ID] = true
				guestIDs = append(guestIDs, ref.ID)
			}
		}
	}
	return reservationIDs, guestIDs
}
