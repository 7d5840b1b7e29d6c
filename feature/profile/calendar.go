package profile

import (
	"math"
	"strings"
	"time"
)

const (
	hoursPerDay = 24
	adultAge    = 18
	dateLayout  = "2006-01-02"
)

// nights is the number of nights between check-in and check-out.
func nights(checkIn, checkOut time.Time) int {
	return int(math.Round(checkOut.Sub(checkIn).Hours() / hoursPerDay))
}

// leadTimeDays is how many days ahead of the stay the booking was made.
func leadTimeDays(created, checkIn time.Time) int {
	return int(math.Round(math.Max(0, checkIn.Sub(created).Hours()/hoursPerDay)))
}

// stayDays walks the stay one day at a time and splits it into week and
// weekend days. Sunday and Monday count as weekend.
func stayDays(checkIn, checkOut time.Time) (weekDays, weekendDays int) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return 0, 0
	}
	for day := checkIn; !day.After(checkOut); day = day.AddDate(0, 0, 1) {
		if day.Weekday() <= time.Monday {
			weekendDays++
		} else {
			weekDays++
		}
	}
	return weekDays, weekendDays
}

// wholeYears counts complete years from a to b, truncated toward zero.
func wholeYears(a, b time.Time) int {
	if b.Before(a) {
		return -wholeYears(b, a)
	}
	years := b.Year() - a.Year()
	if a.AddDate(years, 0, 0).After(b) {
		years--
	}
	return years
}

// wholeDays counts complete 24 hour periods from a to b, truncated toward zero.
func wholeDays(a, b time.Time) int {
	return int(b.Sub(a).Hours() / hoursPerDay)
}

// isChild reports whether someone born on dob was under age at the given
// moment. Unknown or unparsable birth dates never count as children.
func isChild(dob string, at time.Time) bool {
	dob = strings.TrimSpace(dob)
	if dob == "" || at.IsZero() {
		return false
	}
	if len(dob) > len(dateLayout) {
		dob = dob[:len(dateLayout)]
	}
	born, err := time.ParseInLocation(dateLayout, dob, at.Location())
	if err != nil || born.After(at) {
		return false
	}
	return wholeYears(born, at) < adultAge
}
