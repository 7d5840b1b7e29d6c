package online

import "time"

// Status summarizes one incremental run.
type Status struct {
	NewReservations int `json:"newReservations"`
	NewGuests       int `json:"newGuests"`
	NewProfiles     int `json:"newProfiles"`
	UpdatedProfiles int `json:"updatedProfiles"`

	// Fetched is the number of reservation versions read after the high-water mark.
	Fetched int `json:"fetched"`
	// Processed is how many of them were handled before the time budget ran out.
	Processed int `json:"processed"`
	// BudgetExceeded is set when the loop stopped early.
	BudgetExceeded bool `json:"budgetExceeded"`
	// Deferred is set when the commit hit a transient conflict and was left
	// for the next run.
	Deferred bool `json:"deferred"`
	// HighWaterMark is the timestamp the run read after: the newest profile or
	// the saved cursor, whichever is later.
	HighWaterMark time.Time `json:"highWaterMark"`
}

// DedupReport summarizes a dedup pass.
type DedupReport struct {
	Scanned              int  `json:"scanned"`
	DisputedGuests       int  `json:"disputedGuests"`
	DisputedReservations int  `json:"disputedReservations"`
	Unresolved           int  `json:"unresolved"`
	Recreated            int  `json:"recreated"`
	Removed              int  `json:"removed"`
	DuplicateRows        int  `json:"duplicateRows"`
	Deferred             bool `json:"deferred"`
}
