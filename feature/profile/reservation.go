package profile

import (
	"fmt"

	"customer-merger/core/utils"
	"customer-merger/feature/profile/models"
)

const (
	developingAfter = 1
	stableAfter     = 2
	vipAfter        = 4
	groupSize       = 3
)

// ReservationCustomerID is the id of a profile created from a reservation.
func ReservationCustomerID(id int64) string {
	return fmt.Sprintf("R-%d", id)
}

// FromReservation creates a profile for the booker of r. It returns false
// when r carries no ssn, email or phone.
func FromReservation(r models.Reservation) (*models.Customer, bool) {
	id := r.Identity()
	if !id.HasKey() {
		return nil, false
	}

	n := nights(r.CheckIn, r.CheckOut)
	lead := leadTimeDays(r.Created, r.CheckIn)
	weekDays, weekendDays := stayDays(r.CheckIn, r.CheckOut)

	return &models.Customer{
		ID:            ReservationCustomerID(r.ID),
		SSN:           id.SSN,
		Email:         id.Email,
		FirstName:     id.FirstName,
		LastName:      id.LastName,
		PhoneNumber:   id.Phone,
		DateOfBirth:   r.CustomerDateOfBirth,
		IsoCountry:    r.CustomerIsoCountryCode,
		City:          r.CustomerCity,
		PostalCode:    r.CustomerPostalCode,
		StreetAddress: r.CustomerAddress,

		Level:         models.LevelNew,
		LifetimeSpend: r.TotalPaid,

		BookingNightsCounts:  []int{n},
		BookingPeopleCounts:  []int{1},
		BookingLeadTimesDays: []int{lead},

		AvgBookingsPerYear:  1,
		AvgNightsPerBooking: float64(n),
		AvgPeoplePerBooking: 1,
		AvgLeadTimeDays:     float64(lead),

		FirstCheckInDate:   r.CheckIn,
		LatestCheckInDate:  r.CheckIn,
		LatestCheckOutDate: r.CheckOut,
		LatestHotel:        r.Hotel,

		TotalBookingComBookings: boolToInt(r.BookingChannel == models.ChannelBookingCom),
		TotalExpediaBookings:    boolToInt(r.BookingChannel == models.ChannelExpedia),
		TotalNelsonBookings:     boolToInt(r.BookingChannel == models.ChannelNelson),
		TotalMobileAppBookings:  boolToInt(r.BookingChannel == models.ChannelMobileApp),

		TotalLeisureBookings:  boolToInt(r.CustomerPurposeOfVisit == models.PurposeLeisure),
		TotalBusinessBookings: boolToInt(r.CustomerPurposeOfVisit == models.PurposeBusiness),

		TotalBookings:             1,
		TotalBookingCancellations: boolToInt(r.State == models.StateCancelled),
		TotalBookingsPending:      boolToInt(r.State == models.StatePendingConfirmation),
		Blocked:                   r.State == models.StateBlocked,

		TotalWeekDays:    weekDays,
		TotalWeekendDays: weekendDays,

		TotalHotelBookingCounts: []models.HotelCount{{Hotel: r.Hotel, Count: 1}},
		MarketingPermission:     r.MarketingPermission,

		ProfileIDs:   []models.ProfileReference{{ID: r.ID, Kind: models.KindReservation}},
		LevelHistory: []models.LevelChange{{Timestamp: r.Created, Level: models.LevelNew}},

		Created:       r.Created,
		Updated:       r.Updated,
		LatestCreated: r.Created,
	}, true
}

// MergeReservation folds another booking by the same person into c.
// Reservations without an ssn, email or phone leave c unchanged.
func MergeReservation(c *models.Customer, r models.Reservation) *models.Customer {
	nc, ok := FromReservation(r)
	if !ok {
		return c
	}
	out := c.Clone()
	before := c.TotalBookings

	out.SSN = firstNonEmpty(c.SSN, nc.SSN)
	out.Email = firstNonEmpty(nc.Email, c.Email)
	out.FirstName = firstNonEmpty(nc.FirstName, c.FirstName)
	out.LastName = firstNonEmpty(nc.LastName, c.LastName)
	out.PhoneNumber = firstNonEmpty(nc.PhoneNumber, c.PhoneNumber)
	out.DateOfBirth = firstNonEmpty(c.DateOfBirth, nc.DateOfBirth)
	out.IsoCountry = firstNonEmpty(c.IsoCountry, nc.IsoCountry)
	out.City = firstNonEmpty(c.City, nc.City)
	out.PostalCode = firstNonEmpty(c.PostalCode, nc.PostalCode)
	out.StreetAddress = firstNonEmpty(c.StreetAddress, nc.StreetAddress)

	out.LifetimeSpend = c.LifetimeSpend + nc.LifetimeSpend
	out.TotalBookings = before + 1

	out.BookingNightsCounts = append(out.BookingNightsCounts, nc.BookingNightsCounts...)
	out.BookingPeopleCounts = append(out.BookingPeopleCounts, nc.BookingPeopleCounts...)
	out.BookingLeadTimesDays = append(out.BookingLeadTimesDays, nc.BookingLeadTimesDays...)

	out.FirstCheckInDate = utils.MinTime(c.FirstCheckInDate, nc.FirstCheckInDate)
	years := wholeYears(out.FirstCheckInDate, r.CheckIn)
	out.AvgBookingsPerYear = utils.Round2(float64(out.TotalBookings) / float64(years+1))
	out.AvgBookingFrequencyDays = 0
	if before > 0 {
		days := wholeDays(out.FirstCheckInDate, r.CheckIn)
		out.AvgBookingFrequencyDays = utils.Round2(float64(days) / float64(before))
	}
	out.AvgNightsPerBooking = utils.Round2(utils.Mean(out.BookingNightsCounts))
	out.AvgPeoplePerBooking = utils.Round2(utils.Mean(out.BookingPeopleCounts))
	out.AvgLeadTimeDays = utils.Round2(utils.Mean(out.BookingLeadTimesDays))

	if nc.LatestCheckInDate.After(c.LatestCheckInDate) {
		out.LatestCheckInDate = nc.LatestCheckInDate
		out.LatestHotel = nc.LatestHotel
	}
	out.LatestCheckOutDate = utils.MaxTime(c.LatestCheckOutDate, nc.LatestCheckOutDate)

	out.TotalBookingComBookings += nc.TotalBookingComBookings
	out.TotalExpediaBookings += nc.TotalExpediaBookings
	out.TotalNelsonBookings += nc.TotalNelsonBookings
	out.TotalMobileAppBookings += nc.TotalMobileAppBookings
	out.TotalLeisureBookings += nc.TotalLeisureBookings
	out.TotalBusinessBookings += nc.TotalBusinessBookings
	out.TotalBookingCancellations += nc.TotalBookingCancellations
	out.TotalBookingsPending += nc.TotalBookingsPending
	out.Blocked = c.Blocked || nc.Blocked

	out.TotalWeekDays += nc.TotalWeekDays
	out.TotalWeekendDays += nc.TotalWeekendDays
	out.TotalHotelBookingCounts = mergeHotelCounts(c.TotalHotelBookingCounts, nc.TotalHotelBookingCounts)
	out.MarketingPermission = nc.MarketingPermission

	if level := nextLevel(c.Level, out.TotalBookings); level != c.Level {
		out.Level = level
		out.LevelHistory = append(out.LevelHistory, models.LevelChange{Timestamp: r.Created, Level: level})
	}

	out.ProfileIDs = append(out.ProfileIDs, nc.ProfileIDs...)
	out.Created = utils.MinTime(c.Created, nc.Created)
	out.Updated = utils.MaxTime(c.Updated, nc.Updated)
	out.LatestCreated = utils.MaxTime(c.LatestCreated, nc.LatestCreated)
	return out
}

// nextLevel applies the booking thresholds. A guest-only profile becomes New
// on its first own booking and levels never go down.
func nextLevel(current models.Level, totalBookings int) models.Level {
	level := current
	if level == models.LevelGuest {
		level = models.LevelNew
	}
	reached := models.LevelNew
	if totalBookings > developingAfter {
		reached = models.LevelDeveloping
	}
	if totalBookings > stableAfter {
		reached = models.LevelStable
	}
	if totalBookings > vipAfter {
		reached = models.LevelVIP
	}
	if reached.Rank() > level.Rank() {
		level = reached
	}
	return level
}

// mergeHotelCounts sums per-hotel counts, keeping the order in which hotels
// were first seen.
func mergeHotelCounts(first, second []models.HotelCount) []models.HotelCount {
	merged := make([]models.HotelCount, 0, len(first)+len(second))
	index := make(map[string]int, len(first)+len(second))
	for _, list := range [][]models.HotelCount{first, second} {
		for _, h := range list {
			if i, ok := index[h.Hotel]; ok {
				merged[i].Count += h.Count
				continue
			}
			index[h.Hotel] = len(merged)
			merged = append(merged, h)
		}
	}
	return merged
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
