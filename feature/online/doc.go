// Package online keeps stored customer profiles current as new reservations
// arrive.
//
// # Controller
//
// Each Run reads the newest committed customer timestamp (the high-water
// mark), fetches a small batch of reservation versions updated after it and
// the companion guests of those reservations, and folds them in arrival order
// under a wall-clock budget. Candidates are looked up in the store and among
// the profiles already touched by the run.
//
// A record already present in a profile's references is never merged twice:
// the profile is rebuilt from its references instead. Touched profiles are
// committed by deleting their stored rows and inserting the new versions. A
// transient conflict on the delete leaves the store as it was, so the next run
// picks the same records up again.
//
// Dedup repairs profiles that share a Guest or Reservation reference and then
// removes surplus stored versions of an id.
//
// # HTTP
//
//   - POST /merge/run: run once and return a Status.
//   - POST /merge/dedup: run a dedup pass and return a DedupReport.
//   - GET /customers/:id: read a stored profile.
package online
