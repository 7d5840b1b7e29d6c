package merge

import (
	"slices"

	"customer-merger/core/fuzzy"
	"customer-merger/feature/profile"
	"customer-merger/feature/profile/models"
)

// Outcome describes what AddReservation did with a record.
type Outcome int

const (
	// OutcomeSkipped means the record carried no identity and was ignored.
	OutcomeSkipped Outcome = iota
	// OutcomeCreated means a new profile was created.
	OutcomeCreated
	// OutcomeMerged means the record was folded into an existing profile.
	OutcomeMerged
	// OutcomeDuplicate means the profile already referenced the record.
	OutcomeDuplicate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeMerged:
		return "merged"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return "skipped"
	}
}

// GuestResult tells which profiles AddGuest touched. Empty ids mean nothing
// happened on that side.
type GuestResult struct {
	// CreatedID is the id of a new guest-only profile.
	CreatedID string
	// CompanionOf is the booking customer the guest was added to as a companion.
	CompanionOf string
}

// Resolver holds customer profiles and the indices used to find them.
// It is not safe for concurrent use.
type Resolver struct {
	// Exact values to the ids of every profile carrying them.
	ssn   map[string][]string
	email map[string][]string
	phone map[string][]string
	names map[string][]string

	emailIndex *fuzzy.Index
	phoneIndex *fuzzy.Index
	nameIndex  *fuzzy.Index

	customers map[string]*models.Customer
	order     []string

	reservationCustomer map[int64]string
	stays               map[int64]models.Stay
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		ssn:                 make(map[string][]string),
		email:               make(map[string][]string),
		phone:               make(map[string][]string),
		names:               make(map[string][]string),
		emailIndex:          fuzzy.New(),
		phoneIndex:          fuzzy.New(),
		nameIndex:           fuzzy.New(),
		customers:           make(map[string]*models.Customer),
		reservationCustomer: make(map[int64]string),
		stays:               make(map[int64]models.Stay),
	}
}

// AddReservation folds r into the profile of its booker, creating one when no
// existing profile matches. It returns the id of the profile involved.
func (res *Resolver) AddReservation(r models.Reservation) (string, Outcome) {
	res.RememberStay(r.Stay())

	if id, ok := res.FindExisting(r.Identity()); ok {
		res.reservationCustomer[r.ID] = id
		c := res.customers[id]
		if c.HasReference(r.ID, models.KindReservation) {
			return id, OutcomeDuplicate
		}
		res.Put(profile.MergeReservation(c, r))
		return id, OutcomeMerged
	}

	c, ok := profile.FromReservation(r)
	if !ok {
		return "", OutcomeSkipped
	}
	res.Put(c)
	res.reservationCustomer[r.ID] = c.ID
	return c.ID, OutcomeCreated
}

// AddGuest creates a guest-only profile for g when nobody matches it, and
// counts g as a companion on the booking customer's stay unless g is the
// booker. The guest's reservation must have been added first.
func (res *Resolver) AddGuest(g models.Guest) GuestResult {
	var result GuestResult

	stay, ok := res.stays[g.ReservationID]
	if !ok {
		return result
	}

	if _, found := res.FindExisting(g.Identity()); !found {
		if c, ok := profile.FromGuest(stay, g); ok {
			res.Put(c)
			result.CreatedID = c.ID
		}
	}

	if g.GuestIndex == 0 {
		return result
	}
	bookerID, ok := res.reservationCustomer[g.ReservationID]
	if !ok {
		return result
	}
	booker, ok := res.customers[bookerID]
	if !ok || profile.SamePerson(booker.Identity(), g.Identity()) {
		return result
	}
	if !booker.HasReference(g.ID, models.KindReservationGuest) {
		res.Put(profile.AddCompanion(booker, stay, g))
	}
	result.CompanionOf = bookerID
	return result
}

// FindExisting returns the profile that best matches id. Candidates are
// gathered from the ssn, email, phone and name indices in that order; the
// strictly highest score above the threshold wins and ties keep the first.
// When no score clears the threshold, the first candidate sharing a key
// without contradicting evidence is used.
func (res *Resolver) FindExisting(id models.Identity) (string, bool) {
	var candidates []*models.Customer
	for _, cid := range res.Candidates(id) {
		if c, ok := res.customers[cid]; ok {
			candidates = append(candidates, c)
		}
	}
	if c := Best(candidates, id); c != nil {
		return c.ID, true
	}
	return "", false
}

// Best picks the matching profile for id among candidates using the same
// rules as FindExisting. It returns nil when nothing matches.
func Best(candidates []*models.Customer, id models.Identity) *models.Customer {
	var best *models.Customer
	bestScore := profile.MatchThreshold
	for _, c := range candidates {
		if score := profile.Score(c.Identity(), id); score > bestScore {
			best, bestScore = c, score
		}
	}
	if best != nil {
		return best
	}
	// Intentional: one shared exact ssn, email or phone scores exactly the
	// threshold. It still merges unless another field contradicts it.
	for _, c := range candidates {
		if profile.Agrees(c.Identity(), id) {
			return c
		}
	}
	return nil
}

// Candidates lists the distinct profile ids any index returns for id.
func (res *Resolver) Candidates(id models.Identity) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(cid string) {
		if cid != "" && !seen[cid] {
			seen[cid] = true
			out = append(out, cid)
		}
	}

	// Per exact value, the most recently indexed profile comes first.
	addNewest := func(ids []string) {
		for i := len(ids) - 1; i >= 0; i-- {
			add(ids[i])
		}
	}

	if id.SSN != "" {
		addNewest(res.ssn[id.SSN])
	}
	if id.Email != "" {
		for _, e := range res.emailIndex.Search(id.Email, profile.MatchDistance) {
			addNewest(res.email[e])
		}
	}
	if id.Phone != "" {
		for _, p := range res.phoneIndex.Search(id.Phone, profile.MatchDistance) {
			addNewest(res.phone[p])
		}
	}
	if name, ok := id.FullName(); ok {
		for _, n := range res.nameIndex.Search(name, profile.MatchDistance) {
			for _, cid := range res.names[n] {
				add(cid)
			}
		}
	}
	return out
}

// Put stores c, replacing any profile with the same id, and indexes its
// identity fields.
func (res *Resolver) Put(c *models.Customer) {
	if _, ok := res.customers[c.ID]; !ok {
		res.order = append(res.order, c.ID)
	}
	res.customers[c.ID] = c

	id := c.Identity()
	if id.SSN != "" {
		link(res.ssn, id.SSN, c.ID)
	}
	if id.Email != "" {
		link(res.email, id.Email, c.ID)
		res.emailIndex.Insert(id.Email)
	}
	if id.Phone != "" {
		link(res.phone, id.Phone, c.ID)
		res.phoneIndex.Insert(id.Phone)
	}
	if name, ok := id.FullName(); ok {
		if !slices.Contains(res.names[name], c.ID) {
			res.names[name] = append(res.names[name], c.ID)
		}
		res.nameIndex.Insert(name)
	}
}

// Remove drops a profile and unlinks it from the exact-value maps, so other
// profiles sharing a value stay reachable. Fuzzy index entries are kept; a
// value without profiles yields no candidates.
func (res *Resolver) Remove(id string) {
	c, ok := res.customers[id]
	if !ok {
		return
	}
	delete(res.customers, id)
	res.order = slices.DeleteFunc(res.order, func(s string) bool { return s == id })

	ident := c.Identity()
	unlink(res.ssn, ident.SSN, id)
	unlink(res.email, ident.Email, id)
	unlink(res.phone, ident.Phone, id)
	if name, ok := ident.FullName(); ok {
		unlink(res.names, name, id)
	}
}

// link records id as the most recent holder of key.
func link(m map[string][]string, key, id string) {
	ids := slices.DeleteFunc(m[key], func(s string) bool { return s == id })
	m[key] = append(ids, id)
}

func unlink(m map[string][]string, key, id string) {
	ids := slices.DeleteFunc(m[key], func(s string) bool { return s == id })
	if len(ids) == 0 {
		delete(m, key)
		return
	}
	m[key] = ids
}

// Customer returns the profile with the given id.
func (res *Resolver) Customer(id string) (*models.Customer, bool) {
	c, ok := res.customers[id]
	return c, ok
}

// Customers returns copies of all profiles in creation order.
func (res *Resolver) Customers() []*models.Customer {
	out := make([]*models.Customer, 0, len(res.order))
	for _, id := range res.order {
		out = append(out, res.customers[id].Clone())
	}
	return out
}

// Len returns the number of profiles.
func (res *Resolver) Len() int {
	return len(res.customers)
}

// Link records that reservation rid belongs to customer cid.
func (res *Resolver) Link(rid int64, cid string) {
	res.reservationCustomer[rid] = cid
}

// CustomerFor returns the customer a reservation was linked to.
func (res *Resolver) CustomerFor(rid int64) (string, bool) {
	cid, ok := res.reservationCustomer[rid]
	return cid, ok
}

// RememberStay caches the parts of a reservation its guests are resolved against.
func (res *Resolver) RememberStay(s models.Stay) {
	res.stays[s.ID] = s
}

// Stay returns a cached stay.
func (res *Resolver) Stay(rid int64) (models.Stay, bool) {
	s, ok := res.stays[rid]
	return s, ok
}
