// Package merge resolves a stream of reservations and guests into customer
// profiles held in memory.
//
// Records must be fed in arrival order. Each profile is indexed by ssn
// (exact) and by email, phone and full name (exact and within one edit);
// candidates from all indices are scored and the best one above the match
// threshold wins.
package merge
