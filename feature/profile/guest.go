package profile

import (
	"fmt"

	"customer-merger/core/utils"
	"customer-merger/feature/profile/models"
)

// GuestCustomerID is the id of a profile created from a guest record.
func GuestCustomerID(id int64) string {
	return fmt.Sprintf("G-%d", id)
}

// FromGuest creates a guest-only profile for someone staying on another
// person's booking. It returns false when g carries no ssn, email or phone.
func FromGuest(stay models.Stay, g models.Guest) (*models.Customer, bool) {
	id := g.Identity()
	if !id.HasKey() {
		return nil, false
	}
	weekDays, weekendDays := stayDays(stay.CheckIn, stay.CheckOut)

	return &models.Customer{
		ID:          GuestCustomerID(g.ID),
		SSN:         id.SSN,
		Email:       id.Email,
		FirstName:   id.FirstName,
		LastName:    id.LastName,
		PhoneNumber: id.Phone,
		DateOfBirth: g.DateOfBirth,
		IsoCountry:  g.IsoCountryCode,
		City:        g.City,
		PostalCode:  g.PostalCode,

		IncludesChildren: isChild(g.DateOfBirth, stay.CheckIn),
		Level:            models.LevelGuest,

		BookingNightsCounts:  []int{},
		BookingPeopleCounts:  []int{},
		BookingLeadTimesDays: []int{},

		FirstCheckInDate:   stay.CheckIn,
		LatestCheckInDate:  stay.CheckIn,
		LatestCheckOutDate: stay.CheckOut,
		LatestHotel:        stay.Hotel,

		TotalBookingsAsGuest: 1,
		Blocked:              stay.State == models.StateBlocked,

		TotalWeekDays:    weekDays,
		TotalWeekendDays: weekendDays,

		TotalHotelBookingCounts: []models.HotelCount{},
		MarketingPermission:     stay.MarketingPermission,

		ProfileIDs:   []models.ProfileReference{{ID: g.ID, Kind: models.KindGuest}},
		LevelHistory: []models.LevelChange{{Timestamp: stay.Created, Level: models.LevelGuest}},

		Created:       stay.Created,
		Updated:       stay.Updated,
		LatestCreated: stay.Created,
	}, true
}

// MergeGuest folds a stay as a guest on someone else's booking into c.
func MergeGuest(c *models.Customer, stay models.Stay, g models.Guest) *models.Customer {
	nc, ok := FromGuest(stay, g)
	if !ok {
		return c
	}
	out := c.Clone()

	out.SSN = firstNonEmpty(c.SSN, nc.SSN)
	out.Email = firstNonEmpty(c.Email, nc.Email)
	out.PhoneNumber = firstNonEmpty(c.PhoneNumber, nc.PhoneNumber)
	out.FirstName = firstNonEmpty(c.FirstName, nc.FirstName)
	out.LastName = firstNonEmpty(c.LastName, nc.LastName)
	out.DateOfBirth = firstNonEmpty(nc.DateOfBirth, c.DateOfBirth)
	out.IsoCountry = firstNonEmpty(nc.IsoCountry, c.IsoCountry)
	out.City = firstNonEmpty(nc.City, c.City)
	out.PostalCode = firstNonEmpty(nc.PostalCode, c.PostalCode)
	out.IncludesChildren = c.IncludesChildren || nc.IncludesChildren

	out.FirstCheckInDate = utils.MinTime(c.FirstCheckInDate, nc.FirstCheckInDate)
	if nc.LatestCheckInDate.After(c.LatestCheckInDate) {
		out.LatestCheckInDate = nc.LatestCheckInDate
		out.LatestHotel = nc.LatestHotel
	}
	out.LatestCheckOutDate = utils.MaxTime(c.LatestCheckOutDate, nc.LatestCheckOutDate)

	out.TotalBookingsAsGuest = c.TotalBookingsAsGuest + 1
	out.Blocked = c.Blocked || nc.Blocked
	out.TotalWeekDays += nc.TotalWeekDays
	out.TotalWeekendDays += nc.TotalWeekendDays
	out.MarketingPermission = nc.MarketingPermission

	out.ProfileIDs = append(out.ProfileIDs, nc.ProfileIDs...)
	out.Created = utils.MinTime(c.Created, nc.Created)
	out.Updated = utils.MaxTime(c.Updated, nc.Updated)
	out.LatestCreated = utils.MaxTime(c.LatestCreated, nc.LatestCreated)
	return out
}

// AddCompanion records g as an extra person on one of c's own bookings.
func AddCompanion(c *models.Customer, stay models.Stay, g models.Guest) *models.Customer {
	out := c.Clone()

	if i := bookingIndex(c.ProfileIDs, g.ReservationID); i >= 0 && i < len(out.BookingPeopleCounts) {
		out.BookingPeopleCounts[i]++
		if out.BookingPeopleCounts[i] == groupSize {
			out.TotalGroupBookings++
		}
		out.AvgPeoplePerBooking = utils.Round2(utils.Mean(out.BookingPeopleCounts))
	}
	if isChild(g.DateOfBirth, stay.CheckIn) {
		out.IncludesChildren = true
		out.TotalChildrenBookings++
	}
	out.ProfileIDs = append(out.ProfileIDs, models.ProfileReference{ID: g.ID, Kind: models.KindReservationGuest})
	return out
}

// bookingIndex maps a reservation id to its position in the per-booking
// sequences. Only reservation references add entries to those sequences.
func bookingIndex(refs []models.ProfileReference, reservationID int64) int {
	n := 0
	for _, ref := range refs {
		if ref.Kind != models.KindReservation {
			continue
		}
		if ref.ID == reservationID {
			return n
		}
		n++
	}
	return -1
}
