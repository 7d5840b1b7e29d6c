package merge_test

import (
	"fmt"
	"testing"
	"time"

	"customer-merger/feature/merge"
	"customer-merger/feature/profile/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, time.March, 6, 15, 0, 0, 0, time.UTC)

func newReservation(id int64) models.Reservation {
	created := base.AddDate(0, 0, int(id)%30)
	return models.Reservation{
		ID:                id,
		Version:           1,
		CustomerSSN:       fmt.Sprintf("SSN-%d", id),
		CustomerEmail:     fmt.Sprintf("guest%d@example.com", id),
		CustomerMobile:    fmt.Sprintf("+35840%07d", id),
		CustomerFirstName: fmt.Sprintf("First%d", id),
		CustomerLastName:  fmt.Sprintf("Last%d", id),
		BookingChannel:    models.ChannelNelson,
		CheckIn:           created.AddDate(0, 0, 14),
		CheckOut:          created.AddDate(0, 0, 16),
		Created:           created,
		Updated:           created,
		TotalPaid:         99,
		State:             models.StateConfirmed,
		Hotel:             "HKI2",
	}
}

func identityOnly(r models.Reservation, ssn, email, mobile string) models.Reservation {
	r.CustomerSSN = ssn
	r.CustomerEmail = email
	r.CustomerMobile = mobile
	r.CustomerFirstName = ""
	r.CustomerLastName = ""
	return r
}

func newGuest(id, reservationID int64, index int) models.Guest {
	return models.Guest{
		ID:            id,
		ReservationID: reservationID,
		GuestIndex:    index,
		FirstName:     fmt.Sprintf("Guest%d", id),
		LastName:      "Companion",
		Email:         fmt.Sprintf("companion%d@example.com", id),
		DateOfBirth:   "1985-01-01",
	}
}

func TestAddReservation_CreatesDistinctCustomers(t *testing.T) {
	res := merge.NewResolver()
	for id := int64(1); id <= 3; id++ {
		_, outcome := res.AddReservation(newReservation(id))
		assert.Equal(t, merge.OutcomeCreated, outcome)
	}
	assert.Equal(t, 3, res.Len())
}

func TestAddReservation_MergeBySSN(t *testing.T) {
	first := newReservation(1)
	second := identityOnly(newReservation(2), first.CustomerSSN, "", "")

	res := merge.NewResolver()
	id1, _ := res.AddReservation(first)
	id2, outcome := res.AddReservation(second)

	assert.Equal(t, merge.OutcomeMerged, outcome)
	assert.Equal(t, id1, id2)

	customers := res.Customers()
	require.Len(t, customers, 1)
	c := customers[0]
	assert.Equal(t, 2, c.TotalBookings)
	assert.Equal(t, 198.0, c.LifetimeSpend)
	assert.Equal(t, 1.0, c.AvgPeoplePerBooking)
	assert.Len(t, c.BookingLeadTimesDays, 2)
	assert.Equal(t, []models.HotelCount{{Hotel: "HKI2", Count: 2}}, c.TotalHotelBookingCounts)
}

func TestAddReservation_MergeByPhone(t *testing.T) {
	first := newReservation(1)
	res := merge.NewResolver()
	res.AddReservation(first)
	res.AddReservation(identityOnly(newReservation(2), "", "", first.CustomerMobile))

	assert.Equal(t, 1, res.Len())
}

func TestAddReservation_MergeByEmail(t *testing.T) {
	first := newReservation(1)
	res := merge.NewResolver()
	res.AddReservation(first)
	res.AddReservation(identityOnly(newReservation(2), "", first.CustomerEmail, ""))

	assert.Equal(t, 1, res.Len())
}

func TestAddReservation_FuzzyEmailAndName(t *testing.T) {
	first := newReservation(1)
	second := newReservation(2)
	second.CustomerSSN = ""
	second.CustomerMobile = ""
	second.CustomerEmail = first.CustomerEmail + "i"
	second.CustomerFirstName = first.CustomerFirstName
	second.CustomerLastName = first.CustomerLastName

	res := merge.NewResolver()
	res.AddReservation(first)
	_, outcome := res.AddReservation(second)

	assert.Equal(t, merge.OutcomeMerged, outcome)
	assert.Equal(t, 1, res.Len())
}

func TestAddReservation_ConflictingFieldsStaySeparate(t *testing.T) {
	first := newReservation(1)
	second := newReservation(2)
	second.CustomerMobile = first.CustomerMobile

	res := merge.NewResolver()
	res.AddReservation(first)
	_, outcome := res.AddReservation(second)

	assert.Equal(t, merge.OutcomeCreated, outcome)
	assert.Equal(t, 2, res.Len())
}

func TestAddReservation_SkipsAnonymous(t *testing.T) {
	res := merge.NewResolver()
	id, outcome := res.AddReservation(identityOnly(newReservation(1), "", "", ""))

	assert.Empty(t, id)
	assert.Equal(t, merge.OutcomeSkipped, outcome)
	assert.Equal(t, 0, res.Len())
}

func TestAddReservation_Duplicate(t *testing.T) {
	r := newReservation(1)
	res := merge.NewResolver()
	res.AddReservation(r)
	_, outcome := res.AddReservation(r)

	assert.Equal(t, merge.OutcomeDuplicate, outcome)
	assert.Equal(t, 1, res.Customers()[0].TotalBookings)
}

func TestAddGuest_ChildCompanion(t *testing.T) {
	r := newReservation(1)
	res := merge.NewResolver()
	bookerID, _ := res.AddReservation(r)

	g := newGuest(10, r.ID, 1)
	g.DateOfBirth = "2021-06-01"
	result := res.AddGuest(g)

	assert.Equal(t, "G-10", result.CreatedID)
	assert.Equal(t, bookerID, result.CompanionOf)

	customers := res.Customers()
	require.Len(t, customers, 2)

	booker := customers[0]
	assert.True(t, booker.IncludesChildren)
	assert.Equal(t, []int{2}, booker.BookingPeopleCounts)
	assert.Equal(t, 1, booker.TotalChildrenBookings)

	guest := customers[1]
	assert.True(t, guest.IncludesChildren)
	assert.Equal(t, 1, guest.TotalBookingsAsGuest)
	assert.Equal(t, booker.LatestCheckInDate, guest.LatestCheckInDate)
	assert.Equal(t, booker.LatestCheckOutDate, guest.LatestCheckOutDate)
	assert.Equal(t, booker.LatestHotel, guest.LatestHotel)
	assert.Zero(t, guest.LifetimeSpend)
	assert.Equal(t, models.LevelGuest, guest.Level)
}

func TestAddGuest_GuestBecomesCustomer(t *testing.T) {
	parent := newReservation(1)
	parent.Hotel = "HKI1"

	res := merge.NewResolver()
	res.AddReservation(parent)

	g := newGuest(10, parent.ID, 1)
	g.SSN = "SSN-guest"
	res.AddGuest(g)
	require.Equal(t, models.LevelGuest, res.Customers()[1].Level)

	own := newReservation(2)
	own.CustomerSSN = g.SSN
	own.CustomerEmail = ""
	own.CustomerMobile = ""
	own.CustomerFirstName = g.FirstName
	own.CustomerLastName = g.LastName
	own.Hotel = "HKI2"
	id, outcome := res.AddReservation(own)

	assert.Equal(t, "G-10", id)
	assert.Equal(t, merge.OutcomeMerged, outcome)

	customers := res.Customers()
	require.Len(t, customers, 2)
	gc := customers[1]
	assert.Equal(t, 1, gc.TotalBookings)
	assert.Equal(t, 1, gc.TotalBookingsAsGuest)
	assert.Equal(t, []models.HotelCount{{Hotel: "HKI2", Count: 1}}, gc.TotalHotelBookingCounts)
	assert.Equal(t, models.LevelNew, gc.Level)
}

func TestAddGuest_BookerIsNotCompanion(t *testing.T) {
	r := newReservation(1)
	res := merge.NewResolver()
	res.AddReservation(r)
	before := res.Customers()[0]

	g := newGuest(10, r.ID, 1)
	g.SSN = r.CustomerSSN
	g.Email = ""
	g.FirstName = r.CustomerFirstName
	g.LastName = r.CustomerLastName
	result := res.AddGuest(g)

	assert.Empty(t, result.CreatedID)
	assert.Empty(t, result.CompanionOf)
	assert.Equal(t, before, res.Customers()[0])
	assert.Equal(t, 1, res.Len())
}

func TestAddGuest_PrimaryBookerIndexZero(t *testing.T) {
	r := newReservation(1)
	res := merge.NewResolver()
	res.AddReservation(r)

	res.AddGuest(newGuest(10, r.ID, 0))

	booker, ok := res.Customer("R-1")
	require.True(t, ok)
	assert.Equal(t, []int{1}, booker.BookingPeopleCounts)
}

func TestAddGuest_CompanionWithoutIdentity(t *testing.T) {
	r := newReservation(1)
	res := merge.NewResolver()
	res.AddReservation(r)

	g := models.Guest{ID: 10, ReservationID: r.ID, GuestIndex: 1}
	result := res.AddGuest(g)

	assert.Empty(t, result.CreatedID)
	assert.Equal(t, "R-1", result.CompanionOf)
	assert.Equal(t, 1, res.Len())

	again := res.AddGuest(g)
	assert.Equal(t, "R-1", again.CompanionOf)
	booker, _ := res.Customer("R-1")
	assert.Equal(t, []int{2}, booker.BookingPeopleCounts, "a companion is only counted once")
}

func TestAddGuest_UnknownReservation(t *testing.T) {
	res := merge.NewResolver()
	result := res.AddGuest(newGuest(10, 99, 1))

	assert.Equal(t, merge.GuestResult{}, result)
	assert.Equal(t, 0, res.Len())
}

func TestFindExisting_StrictMaximum(t *testing.T) {
	res := merge.NewResolver()

	weak := &models.Customer{ID: "weak", Email: "anna@example.com", FirstName: "Anna", LastName: "Korhonen"}
	strong := &models.Customer{ID: "strong", SSN: "S-1", Email: "anna@example.com", FirstName: "Anna", LastName: "Korhonen"}
	res.Put(weak)
	res.Put(strong)

	id, ok := res.FindExisting(models.Identity{SSN: "S-1", Email: "anna@example.com", FirstName: "Anna", LastName: "Korhonen"})
	require.True(t, ok)
	assert.Equal(t, "strong", id)

	id, ok = res.FindExisting(models.Identity{Email: "anna@example.com", FirstName: "Anna", LastName: "Korhonen"})
	require.True(t, ok)
	assert.Equal(t, "strong", id, "ties keep the first candidate, found by email")

	_, ok = res.FindExisting(models.Identity{Email: "someone@else.org"})
	assert.False(t, ok)
}

func TestCustomers_ReturnsCopies(t *testing.T) {
	res := merge.NewResolver()
	res.AddReservation(newReservation(1))

	c := res.Customers()[0]
	c.TotalBookings = 42
	c.ProfileIDs[0].ID = 7

	fresh, _ := res.Customer("R-1")
	assert.Equal(t, 1, fresh.TotalBookings)
	assert.Equal(t, int64(1), fresh.ProfileIDs[0].ID)
}

func TestRemove(t *testing.T) {
	r := newReservation(1)
	res := merge.NewResolver()
	res.AddReservation(r)
	res.Remove("R-1")

	assert.Equal(t, 0, res.Len())
	_, ok := res.FindExisting(r.Identity())
	assert.False(t, ok)
	assert.Empty(t, res.Customers())
}

func TestRemove_KeepsProfilesSharingAKey(t *testing.T) {
	res := merge.NewResolver()
	res.Put(&models.Customer{ID: "R-1", Email: "shared@example.com", PhoneNumber: "+358401234567", FirstName: "Mika", LastName: "Virtanen"})
	res.Put(&models.Customer{ID: "R-2", Email: "shared@example.com", PhoneNumber: "+358401234567", FirstName: "Mika", LastName: "Virtanen"})
	res.Remove("R-2")

	id, ok := res.FindExisting(models.Identity{Email: "shared@example.com"})
	require.True(t, ok)
	assert.Equal(t, "R-1", id)

	id, ok = res.FindExisting(models.Identity{Phone: "+358401234567"})
	require.True(t, ok)
	assert.Equal(t, "R-1", id)
	assert.Equal(t, []string{"R-1"}, res.Candidates(models.Identity{Email: "shared@example.com"}))

	res.Remove("R-1")
	assert.Empty(t, res.Candidates(models.Identity{Email: "shared@example.com", Phone: "+358401234567"}))
}

func TestBest_SharedKeyAtThreshold(t *testing.T) {
	stored := &models.Customer{ID: "R-1", Email: "mika@example.com", PhoneNumber: "+358401111111"}

	// One shared email scores exactly the threshold and nothing contradicts it.
	assert.Equal(t, stored, merge.Best([]*models.Customer{stored}, models.Identity{Email: "mika@example.com"}))

	// The same email with a different phone scores zero and is not merged.
	assert.Nil(t, merge.Best([]*models.Customer{stored}, models.Identity{Email: "mika@example.com", Phone: "+358409999999"}))
}
