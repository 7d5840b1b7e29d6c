// Package profile builds and updates customer profiles from source records.
//
// Every function here is pure: it takes a profile and a record and returns a
// new profile, leaving the input untouched. Replaying a profile's references
// in order through these functions reproduces the profile exactly, which is
// what Rebuild relies on.
//
// The identity scorer lives here as well:
//
//	score := profile.Score(customer.Identity(), reservation.Identity())
//	if profile.IsMatch(score) {
//	    customer = profile.MergeReservation(customer, reservation)
//	}
package profile
