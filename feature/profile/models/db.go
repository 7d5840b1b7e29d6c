package models

import (
	"time"

	"gorm.io/datatypes"
)

// CustomerRow is the stored form of a Customer. The id column is not unique:
// an interrupted delete-then-insert can leave several versions of one
// profile, which the dedup pass cleans up by row_id.
type CustomerRow struct {
	RowID uint64 `gorm:"column:row_id;primaryKey;autoIncrement"`
	ID    string `gorm:"column:id;size:64;index"`

	SSN           string `gorm:"column:ssn;size:32;index"`
	Email         string `gorm:"column:email;size:255;index"`
	FirstName     string `gorm:"column:first_name;size:128"`
	LastName      string `gorm:"column:last_name;size:128"`
	FullName      string `gorm:"column:full_name;size:257;index"`
	PhoneNumber   string `gorm:"column:phone_number;size:64;index"`
	DateOfBirth   string `gorm:"column:date_of_birth;size:10"`
	IsoCountry    string `gorm:"column:iso_country_code;size:3"`
	City          string `gorm:"column:city;size:128"`
	PostalCode    string `gorm:"column:postal_code;size:32"`
	StreetAddress string `gorm:"column:street_address;size:255"`

	IncludesChildren bool    `gorm:"column:includes_children"`
	Level            string  `gorm:"column:level;size:16"`
	LifetimeSpend    float64 `gorm:"column:lifetime_spend"`

	BookingNightsCounts  datatypes.JSONSlice[int] `gorm:"column:booking_nights_counts"`
	BookingPeopleCounts  datatypes.JSONSlice[int] `gorm:"column:booking_people_counts"`
	BookingLeadTimesDays datatypes.JSONSlice[int] `gorm:"column:booking_lead_times_days"`

	AvgBookingsPerYear      float64 `gorm:"column:avg_bookings_per_year"`
	AvgBookingFrequencyDays float64 `gorm:"column:avg_booking_frequency_days"`
	AvgNightsPerBooking     float64 `gorm:"column:avg_nights_per_booking"`
	AvgPeoplePerBooking     float64 `gorm:"column:avg_people_per_booking"`
	AvgLeadTimeDays         float64 `gorm:"column:avg_lead_time_days"`

	FirstCheckInDate   time.Time `gorm:"column:first_check_in_date"`
	LatestCheckInDate  time.Time `gorm:"column:latest_check_in_date"`
	LatestCheckOutDate time.Time `gorm:"column:latest_check_out_date"`
	LatestHotel        string    `gorm:"column:latest_hotel;size:16"`

	TotalBookingComBookings int `gorm:"column:total_booking_com_bookings"`
	TotalExpediaBookings    int `gorm:"column:total_expedia_bookings"`
	TotalNelsonBookings     int `gorm:"column:total_nelson_bookings"`
	TotalMobileAppBookings  int `gorm:"column:total_mobile_app_bookings"`

	TotalLeisureBookings  int `gorm:"column:total_leisure_bookings"`
	TotalBusinessBookings int `gorm:"column:total_business_bookings"`

	TotalBookingsAsGuest      int `gorm:"column:total_bookings_as_guest"`
	TotalBookings             int `gorm:"column:total_bookings"`
	TotalBookingCancellations int `gorm:"column:total_booking_cancellations"`
	TotalBookingsPending      int `gorm:"column:total_bookings_pending"`
	TotalGroupBookings        int `gorm:"column:total_group_bookings"`
	TotalChildrenBookings     int `gorm:"column:total_children_bookings"`

	Blocked bool `gorm:"column:blocked"`

	TotalWeekDays    int `gorm:"column:total_week_days"`
	TotalWeekendDays int `gorm:"column:total_weekend_days"`

	TotalHotelBookingCounts datatypes.JSONSlice[HotelCount] `gorm:"column:total_hotel_booking_counts"`

	MarketingPermission bool `gorm:"column:marketing_permission"`

	ProfileIDs   datatypes.JSONSlice[ProfileReference] `gorm:"column:profile_ids"`
	LevelHistory datatypes.JSONSlice[LevelChange]      `gorm:"column:level_history"`

	Created       time.Time `gorm:"column:created"`
	Updated       time.Time `gorm:"column:updated;index"`
	LatestCreated time.Time `gorm:"column:latest_created"`
}

// TableName overrides the table name for customers.
func (CustomerRow) TableName() string {
	return "customers"
}

// NewCustomerRow maps a profile to its stored form.
func NewCustomerRow(c *Customer) CustomerRow {
	fullName, _ := c.Identity().FullName()
	return CustomerRow{
		ID:                        c.ID,
		SSN:                       c.SSN,
		Email:                     c.Email,
		FirstName:                 c.FirstName,
		LastName:                  c.LastName,
		FullName:                  fullName,
		PhoneNumber:               c.PhoneNumber,
		DateOfBirth:               c.DateOfBirth,
		IsoCountry:                c.IsoCountry,
		City:                      c.City,
		PostalCode:                c.PostalCode,
		StreetAddress:             c.StreetAddress,
		IncludesChildren:          c.IncludesChildren,
		Level:                     string(c.Level),
		LifetimeSpend:             c.LifetimeSpend,
		BookingNightsCounts:       nonNil(c.BookingNightsCounts),
		BookingPeopleCounts:       nonNil(c.BookingPeopleCounts),
		BookingLeadTimesDays:      nonNil(c.BookingLeadTimesDays),
		AvgBookingsPerYear:        c.AvgBookingsPerYear,
		AvgBookingFrequencyDays:   c.AvgBookingFrequencyDays,
		AvgNightsPerBooking:       c.AvgNightsPerBooking,
		AvgPeoplePerBooking:       c.AvgPeoplePerBooking,
		AvgLeadTimeDays:           c.AvgLeadTimeDays,
		FirstCheckInDate:          c.FirstCheckInDate,
		LatestCheckInDate:         c.LatestCheckInDate,
		LatestCheckOutDate:        c.LatestCheckOutDate,
		LatestHotel:               c.LatestHotel,
		TotalBookingComBookings:   c.TotalBookingComBookings,
		TotalExpediaBookings:      c.TotalExpediaBookings,
		TotalNelsonBookings:       c.TotalNelsonBookings,
		TotalMobileAppBookings:    c.TotalMobileAppBookings,
		TotalLeisureBookings:      c.TotalLeisureBookings,
		TotalBusinessBookings:     c.TotalBusinessBookings,
		TotalBookingsAsGuest:      c.TotalBookingsAsGuest,
		TotalBookings:             c.TotalBookings,
		TotalBookingCancellations: c.TotalBookingCancellations,
		TotalBookingsPending:      c.TotalBookingsPending,
		TotalGroupBookings:        c.TotalGroupBookings,
		TotalChildrenBookings:     c.TotalChildrenBookings,
		Blocked:                   c.Blocked,
		TotalWeekDays:             c.TotalWeekDays,
		TotalWeekendDays:          c.TotalWeekendDays,
		TotalHotelBookingCounts:   nonNil(c.TotalHotelBookingCounts),
		MarketingPermission:       c.MarketingPermission,
		ProfileIDs:                nonNil(c.ProfileIDs),
		LevelHistory:              nonNil(c.LevelHistory),
		Created:                   c.Created,
		Updated:                   c.Updated,
		LatestCreated:             c.LatestCreated,
	}
}

// Customer maps a stored row back to a profile.
func (r CustomerRow) Customer() *Customer {
	return &Customer{
		ID:                        r.ID,
		SSN:                       r.SSN,
		Email:                     r.Email,
		FirstName:                 r.FirstName,
		LastName:                  r.LastName,
		PhoneNumber:               r.PhoneNumber,
		DateOfBirth:               r.DateOfBirth,
		IsoCountry:                r.IsoCountry,
		City:                      r.City,
		PostalCode:                r.PostalCode,
		StreetAddress:             r.StreetAddress,
		IncludesChildren:          r.IncludesChildren,
		Level:                     Level(r.Level),
		LifetimeSpend:             r.LifetimeSpend,
		BookingNightsCounts:       nonNil([]int(r.BookingNightsCounts)),
		BookingPeopleCounts:       nonNil([]int(r.BookingPeopleCounts)),
		BookingLeadTimesDays:      nonNil([]int(r.BookingLeadTimesDays)),
		AvgBookingsPerYear:        r.AvgBookingsPerYear,
		AvgBookingFrequencyDays:   r.AvgBookingFrequencyDays,
		AvgNightsPerBooking:       r.AvgNightsPerBooking,
		AvgPeoplePerBooking:       r.AvgPeoplePerBooking,
		AvgLeadTimeDays:           r.AvgLeadTimeDays,
		FirstCheckInDate:          r.FirstCheckInDate,
		LatestCheckInDate:         r.LatestCheckInDate,
		LatestCheckOutDate:        r.LatestCheckOutDate,
		LatestHotel:               r.LatestHotel,
		TotalBookingComBookings:   r.TotalBookingComBookings,
		TotalExpediaBookings:      r.TotalExpediaBookings,
		TotalNelsonBookings:       r.TotalNelsonBookings,
		TotalMobileAppBookings:    r.TotalMobileAppBookings,
		TotalLeisureBookings:      r.TotalLeisureBookings,
		TotalBusinessBookings:     r.TotalBusinessBookings,
		TotalBookingsAsGuest:      r.TotalBookingsAsGuest,
		TotalBookings:             r.TotalBookings,
		TotalBookingCancellations: r.TotalBookingCancellations,
		TotalBookingsPending:      r.TotalBookingsPending,
		TotalGroupBookings:        r.TotalGroupBookings,
		TotalChildrenBookings:     r.TotalChildrenBookings,
		Blocked:                   r.Blocked,
		TotalWeekDays:             r.TotalWeekDays,
		TotalWeekendDays:          r.TotalWeekendDays,
		TotalHotelBookingCounts:   nonNil([]HotelCount(r.TotalHotelBookingCounts)),
		MarketingPermission:       r.MarketingPermission,
		ProfileIDs:                nonNil([]ProfileReference(r.ProfileIDs)),
		LevelHistory:              nonNil([]LevelChange(r.LevelHistory)),
		Created:                   r.Created,
		Updated:                   r.Updated,
		LatestCreated:             r.LatestCreated,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// MatchField names a column the store can search by edit distance.
type MatchField string

const (
	FieldEmail MatchField = "email"
	FieldPhone MatchField = "phone"
	FieldName  MatchField = "name"
)

// StoredVersion is one stored row of a customer id.
type StoredVersion struct {
	RowID   uint64    `gorm:"column:row_id" json:"rowId"`
	ID      string    `gorm:"column:id" json:"id"`
	Updated time.Time `gorm:"column:updated" json:"updated"`
}

// MergeCursor records how far a job has read the reservation stream. It lets
// the incremental merge move past records that produced no profile.
type MergeCursor struct {
	Name     string    `gorm:"column:name;size:64;primaryKey"`
	Position time.Time `gorm:"column:position"`
}

// TableName overrides the table name for merge cursors.
func (MergeCursor) TableName() string {
	return "merge_cursors"
}
