package models

import (
	"slices"
	"strings"
	"time"
)

// Level is the loyalty level of a customer profile.
type Level string

const (
	LevelGuest      Level = "Guest"
	LevelNew        Level = "New"
	LevelDeveloping Level = "Developing"
	LevelStable     Level = "Stable"
	LevelVIP        Level = "VIP"
)

// Rank orders levels from Guest (0) to VIP (4). Unknown levels rank -1.
func (l Level) Rank() int {
	switch l {
	case LevelGuest:
		return 0
	case LevelNew:
		return 1
	case LevelDeveloping:
		return 2
	case LevelStable:
		return 3
	case LevelVIP:
		return 4
	default:
		return -1
	}
}

// RefKind tells which kind of source record a ProfileReference points to.
type RefKind string

const (
	// KindReservation is a reservation booked by the customer.
	KindReservation RefKind = "Reservation"
	// KindGuest is a stay where the customer was a guest on someone else's booking.
	KindGuest RefKind = "Guest"
	// KindReservationGuest is a companion on one of the customer's own bookings.
	KindReservationGuest RefKind = "ReservationGuest"
)

// Reservation lifecycle states.
const (
	StateConfirmed           = "CONFIRMED"
	StateCancelled           = "CANCELLED"
	StatePendingConfirmation = "PENDING_CONFIRMATION"
	StateBlocked             = "BLOCKED"
)

// Booking channels.
const (
	ChannelBookingCom = "BOOKINGCOM"
	ChannelExpedia    = "EXPEDIA"
	ChannelNelson     = "NELSON"
	ChannelMobileApp  = "MOBILEAPP"
)

// Purposes of visit.
const (
	PurposeLeisure  = "LEISURE"
	PurposeBusiness = "BUSINESS"
)

// ProfileReference records one source record folded into a customer.
type ProfileReference struct {
	ID   int64   `json:"id"`
	Kind RefKind `json:"type"`
}

// LevelChange is an entry of the level history.
type LevelChange struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
}

// HotelCount is the number of bookings a customer made at one hotel.
type HotelCount struct {
	Hotel string `json:"hotel"`
	Count int    `json:"count"`
}

// Identity holds the fields used to decide whether two records describe the
// same person.
type Identity struct {
	SSN       string
	Email     string
	Phone     string
	FirstName string
	LastName  string
}

// HasKey reports whether any hard identifier (ssn, email, phone) is present.
func (i Identity) HasKey() bool {
	return i.SSN != "" || i.Email != "" || i.Phone != ""
}

// FullName returns "first last" when both names are present.
func (i Identity) FullName() (string, bool) {
	if i.FirstName == "" || i.LastName == "" {
		return "", false
	}
	return i.FirstName + " " + i.LastName, true
}

// Customer is the aggregate profile built from reservations and guest stays.
type Customer struct {
	ID string `json:"id"`

	SSN           string `json:"ssn,omitempty"`
	Email         string `json:"email,omitempty"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty"`
	IsoCountry    string `json:"isoCountryCode,omitempty"`
	City          string `json:"city,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	StreetAddress string `json:"streetAddress,omitempty"`

	IncludesChildren bool    `json:"includesChildren"`
	Level            Level   `json:"level"`
	LifetimeSpend    float64 `json:"lifetimeSpend"`

	BookingNightsCounts  []int `json:"bookingNightsCounts"`
	BookingPeopleCounts  []int `json:"bookingPeopleCounts"`
	BookingLeadTimesDays []int `json:"bookingLeadTimesDays"`

	AvgBookingsPerYear      float64 `json:"avgBookingsPerYear"`
	AvgBookingFrequencyDays float64 `json:"avgBookingFrequencyDays"`
	AvgNightsPerBooking     float64 `json:"avgNightsPerBooking"`
	AvgPeoplePerBooking     float64 `json:"avgPeoplePerBooking"`
	AvgLeadTimeDays         float64 `json:"avgLeadTimeDays"`

	FirstCheckInDate   time.Time `json:"firstCheckInDate"`
	LatestCheckInDate  time.Time `json:"latestCheckInDate"`
	LatestCheckOutDate time.Time `json:"latestCheckOutDate"`
	LatestHotel        string    `json:"latestHotel"`

	TotalBookingComBookings int `json:"totalBookingComBookings"`
	TotalExpediaBookings    int `json:"totalExpediaBookings"`
	TotalNelsonBookings     int `json:"totalNelsonBookings"`
	TotalMobileAppBookings  int `json:"totalMobileAppBookings"`

	TotalLeisureBookings  int `json:"totalLeisureBookings"`
	TotalBusinessBookings int `json:"totalBusinessBookings"`

	TotalBookingsAsGuest      int `json:"totalBookingsAsGuest"`
	TotalBookings             int `json:"totalBookings"`
	TotalBookingCancellations int `json:"totalBookingCancellations"`
	TotalBookingsPending      int `json:"totalBookingsPending"`
	TotalGroupBookings        int `json:"totalGroupBookings"`
	TotalChildrenBookings     int `json:"totalChildrenBookings"`

	Blocked bool `json:"blocked"`

	TotalWeekDays    int `json:"totalWeekDays"`
	TotalWeekendDays int `json:"totalWeekendDays"`

	TotalHotelBookingCounts []HotelCount `json:"totalHotelBookingCounts"`

	MarketingPermission bool `json:"marketingPermission"`

	ProfileIDs   []ProfileReference `json:"profileIds"`
	LevelHistory []LevelChange      `json:"levelHistory"`

	Created       time.Time `json:"created"`
	Updated       time.Time `json:"updated"`
	LatestCreated time.Time `json:"latestCreated"`
}

// Identity returns the matching fields of the profile.
func (c *Customer) Identity() Identity {
	return Identity{
		SSN:       c.SSN,
		Email:     c.Email,
		Phone:     c.PhoneNumber,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}
}

// HasReference reports whether a record of the given kind and id has been
// folded into the profile.
func (c *Customer) HasReference(id int64, kind RefKind) bool {
	for _, ref := range c.ProfileIDs {
		if ref.ID == id && ref.Kind == kind {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Profile functions never mutate their input, so
// they start from a clone.
func (c *Customer) Clone() *Customer {
	out := *c
	out.BookingNightsCounts = slices.Clone(c.BookingNightsCounts)
	out.BookingPeopleCounts = slices.Clone(c.BookingPeopleCounts)
	out.BookingLeadTimesDays = slices.Clone(c.BookingLeadTimesDays)
	out.TotalHotelBookingCounts = slices.Clone(c.TotalHotelBookingCounts)
	out.ProfileIDs = slices.Clone(c.ProfileIDs)
	out.LevelHistory = slices.Clone(c.LevelHistory)
	return &out
}

// Reservation is one version of a booking row.
type Reservation struct {
	ID      int64 `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Version int   `gorm:"column:version;primaryKey;autoIncrement:false" json:"version"`

	CustomerSSN            string `gorm:"column:customer_ssn;size:32;index" json:"customerSsn,omitempty"`
	CustomerEmail          string `gorm:"column:customer_email;size:255" json:"customerEmailReal,omitempty"`
	CustomerMobile         string `gorm:"column:customer_mobile;size:64" json:"customerMobile,omitempty"`
	CustomerFirstName      string `gorm:"column:customer_first_name;size:128" json:"customerFirstName,omitempty"`
	CustomerLastName       string `gorm:"column:customer_last_name;size:128" json:"customerLastName,omitempty"`
	CustomerDateOfBirth    string `gorm:"column:customer_date_of_birth;size:10" json:"customerDateOfBirth,omitempty"`
	CustomerIsoCountryCode string `gorm:"column:customer_iso_country_code;size:3" json:"customerIsoCountryCode,omitempty"`
	CustomerCity           string `gorm:"column:customer_city;size:128" json:"customerCity,omitempty"`
	CustomerAddress        string `gorm:"column:customer_address;size:255" json:"customerAddress,omitempty"`
	CustomerPostalCode     string `gorm:"column:customer_postal_code;size:32" json:"customerPostalCode,omitempty"`
	CustomerPurposeOfVisit string `gorm:"column:customer_purpose_of_visit;size:16" json:"customerPurposeOfVisit,omitempty"`

	BookingChannel      string    `gorm:"column:booking_channel;size:16" json:"bookingChannel"`
	CheckIn             time.Time `gorm:"column:check_in" json:"checkIn"`
	CheckOut            time.Time `gorm:"column:check_out" json:"checkOut"`
	Created             time.Time `gorm:"column:created" json:"created"`
	TotalPaid           float64   `gorm:"column:total_paid" json:"totalPaid"`
	State               string    `gorm:"column:state;size:32" json:"state"`
	Hotel               string    `gorm:"column:hotel;size:16" json:"hotel"`
	MarketingPermission bool      `gorm:"column:marketing_permission" json:"marketingPermission"`
	Updated             time.Time `gorm:"column:updated;index" json:"updated"`
}

// TableName overrides the table name for reservations.
func (Reservation) TableName() string {
	return "reservations"
}

// Identity returns the booker's matching fields.
func (r Reservation) Identity() Identity {
	return Identity{
		SSN:       strings.TrimSpace(r.CustomerSSN),
		Email:     strings.TrimSpace(r.CustomerEmail),
		Phone:     strings.TrimSpace(r.CustomerMobile),
		FirstName: strings.TrimSpace(r.CustomerFirstName),
		LastName:  strings.TrimSpace(r.CustomerLastName),
	}
}

// Stay returns the subset of the reservation needed to resolve its guests.
func (r Reservation) Stay() Stay {
	return Stay{
		ID:                  r.ID,
		CheckIn:             r.CheckIn,
		CheckOut:            r.CheckOut,
		Created:             r.Created,
		Updated:             r.Updated,
		Hotel:               r.Hotel,
		State:               r.State,
		MarketingPermission: r.MarketingPermission,
	}
}

// Stay is the part of a reservation that guest records are resolved against.
type Stay struct {
	ID                  int64
	CheckIn             time.Time
	CheckOut            time.Time
	Created             time.Time
	Updated             time.Time
	Hotel               string
	State               string
	MarketingPermission bool
}

// Guest is a person staying on a reservation. GuestIndex 0 is the booker.
type Guest struct {
	ID            int64 `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	ReservationID int64 `gorm:"column:reservation_id;index" json:"reservationId"`
	GuestIndex    int   `gorm:"column:guest_index" json:"guestIndex"`

	FirstName           string `gorm:"column:first_name;size:128" json:"firstName,omitempty"`
	LastName            string `gorm:"column:last_name;size:128" json:"lastName,omitempty"`
	Email               string `gorm:"column:email;size:255" json:"email,omitempty"`
	Mobile              string `gorm:"column:mobile;size:64" json:"mobile,omitempty"`
	SSN                 string `gorm:"column:ssn;size:32" json:"ssn,omitempty"`
	DateOfBirth         string `gorm:"column:date_of_birth;size:10" json:"dateOfBirth,omitempty"`
	Nationality         string `gorm:"column:nationality;size:3" json:"nationality,omitempty"`
	IsoCountryCode      string `gorm:"column:iso_country_code;size:3" json:"isoCountryCode,omitempty"`
	City                string `gorm:"column:city;size:128" json:"city,omitempty"`
	PostalCode          string `gorm:"column:postal_code;size:32" json:"postalCode,omitempty"`
	MarketingPermission bool   `gorm:"column:marketing_permission" json:"marketingPermission"`
}

// TableName overrides the table name for guests.
func (Guest) TableName() string {
	return "guests"
}

// Identity returns the guest's matching fields.
func (g Guest) Identity() Identity {
	return Identity{
		SSN:       strings.TrimSpace(g.SSN),
		Email:     strings.TrimSpace(g.Email),
		Phone:     strings.TrimSpace(g.Mobile),
		FirstName: strings.TrimSpace(g.FirstName),
		LastName:  strings.TrimSpace(g.LastName),
	}
}
