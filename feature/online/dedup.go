package online

import (
	"context"
	"fmt"
	"slices"
	"time"

	"customer-merger/feature/profile"
	"customer-merger/feature/profile/models"

	"go.uber.org/zap"
)

// claim is a source record referenced by more than one profile.
type claim struct {
	kind      models.RefKind
	id        int64
	customers []string
}

// Dedup repairs profiles older than the cool-down window. Records claimed by
// several profiles are given to the profile their identity resolves to and
// stripped from the others; then surplus stored versions of an id are deleted,
// keeping the most recently updated.
func (c *Controller) Dedup(ctx context.Context) (DedupReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var report DedupReport
	cutoff := c.now().Add(-c.cfg.DedupCooldown)

	customers, err := c.store.CustomersUpdatedBefore(ctx, cutoff)
	if err != nil {
		return report, err
	}
	report.Scanned = len(customers)

	claims, err := disputedClaims(customers)
	if err != nil {
		return report, err
	}

	r, err := c.newRun(ctx, &Status{})
	if err != nil {
		return report, err
	}
	for _, cl := range claims {
		if cl.kind == models.KindGuest {
			report.DisputedGuests++
		} else {
			report.DisputedReservations++
		}
		resolved, err := r.settle(ctx, cl, &report)
		if err != nil {
			return report, err
		}
		if !resolved {
			report.Unresolved++
		}
	}

	if report.Deferred, err = r.commit(ctx); err != nil {
		return report, err
	}
	if report.Deferred {
		return report, nil
	}

	if report.DuplicateRows, err = c.removeDuplicateVersions(ctx, cutoff); err != nil {
		return report, err
	}

	c.logger.Info("Dedup finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("disputed_guests", report.DisputedGuests),
		zap.Int("disputed_reservations", report.DisputedReservations),
		zap.Int("unresolved", report.Unresolved),
		zap.Int("recreated", report.Recreated),
		zap.Int("removed", report.Removed),
		zap.Int("duplicate_rows", report.DuplicateRows))
	return report, nil
}

// disputedClaims lists Guest and Reservation references held by more than
// one profile, guests first, each group in first-seen order.
func disputedClaims(customers []*models.Customer) ([]claim, error) {
	var guests, reservations []*claim
	index := make(map[models.ProfileReference]*claim)

	for _, cust := range customers {
		for _, ref := range cust.ProfileIDs {
			switch ref.Kind {
			case models.KindGuest, models.KindReservation:
			case models.KindReservationGuest:
				continue
			default:
				return nil, fmt.Errorf("%w: %q on customer %s", profile.ErrUnknownReference, ref.Kind, cust.ID)
			}
			cl, ok := index[ref]
			if !ok {
				cl = &claim{kind: ref.Kind, id: ref.ID}
				index[ref] = cl
				if ref.Kind == models.KindGuest {
					guests = append(guests, cl)
				} else {
					reservations = append(reservations, cl)
				}
			}
			if !slices.Contains(cl.customers, cust.ID) {
				cl.customers = append(cl.customers, cust.ID)
			}
		}
	}

	var out []claim
	for _, cl := range slices.Concat(guests, reservations) {
		if len(cl.customers) > 1 {
			out = append(out, *cl)
		}
	}
	return out, nil
}

// settle hands a disputed record to its owner and strips it from the other
// claimants. It returns false when the record or its owner cannot be found.
func (r *run) settle(ctx context.Context, cl claim, report *DedupReport) (bool, error) {
	log := r.c.logger.With(zap.String("kind", string(cl.kind)), zap.Int64("record_id", cl.id))

	var (
		identity models.Identity
		fold     func(*models.Customer) *models.Customer
		strip    func(*models.Customer) ([]models.ProfileReference, error)
	)

	switch cl.kind {
	case models.KindGuest:
		g, res, ok, err := r.guestWithReservation(ctx, cl.id)
		if err != nil {
			return false, err
		}
		if !ok {
			log.Error("Disputed record not found")
			return false, nil
		}
		identity = g.Identity()
		fold = func(c *models.Customer) *models.Customer { return profile.MergeGuest(c, res.Stay(), g) }
		strip = func(c *models.Customer) ([]models.ProfileReference, error) {
			return slices.DeleteFunc(slices.Clone(c.ProfileIDs), func(ref models.ProfileReference) bool {
				return ref.Kind == models.KindGuest && ref.ID == g.ID
			}), nil
		}

	default:
		found, err := r.c.store.ReservationsByIDs(ctx, []int64{cl.id})
		if err != nil {
			return false, err
		}
		if len(found) == 0 {
			log.Error("Disputed record not found")
			return false, nil
		}
		res := found[0]
		identity = res.Identity()
		fold = func(c *models.Customer) *models.Customer { return profile.MergeReservation(c, res) }
		strip = func(c *models.Customer) ([]models.ProfileReference, error) {
			return r.withoutReservation(ctx, c, res.ID)
		}
	}

	owner, err := r.find(ctx, identity)
	if err != nil {
		return false, err
	}
	if owner == nil {
		log.Error("Matching customer not found")
		return false, nil
	}
	if !owner.HasReference(cl.id, cl.kind) {
		owner = fold(owner)
		r.resolver.Put(owner)
		r.touch(owner.ID)
	}
	log.Info("Assigning record", zap.String("customer_id", owner.ID))

	for _, cid := range cl.customers {
		if cid == owner.ID {
			continue
		}
		claimant, err := r.current(ctx, cid)
		if err != nil {
			return false, err
		}
		if claimant == nil {
			continue
		}
		refs, err := strip(claimant)
		if err != nil {
			return false, err
		}
		if len(refs) == 0 {
			log.Info("Removing emptied customer", zap.String("customer_id", cid))
			r.drop(cid)
			report.Removed++
			continue
		}
		stripped := claimant.Clone()
		stripped.ProfileIDs = refs
		rebuilt, err := r.recreate(ctx, stripped)
		if err != nil {
			return false, err
		}
		r.resolver.Put(rebuilt)
		r.touch(cid)
		report.Recreated++
	}
	return true, nil
}

func (r *run) guestWithReservation(ctx context.Context, id int64) (models.Guest, models.Reservation, bool, error) {
	guests, err := r.c.store.GuestsByIDs(ctx, []int64{id})
	if err != nil || len(guests) == 0 {
		return models.Guest{}, models.Reservation{}, false, err
	}
	found, err := r.c.store.ReservationsByIDs(ctx, []int64{guests[0].ReservationID})
	if err != nil || len(found) == 0 {
		return models.Guest{}, models.Reservation{}, false, err
	}
	return guests[0], found[0], true, nil
}

// withoutReservation drops a reservation and the companions counted on it.
func (r *run) withoutReservation(ctx context.Context, c *models.Customer, reservationID int64) ([]models.ProfileReference, error) {
	var companionIDs []int64
	for _, ref := range c.ProfileIDs {
		if ref.Kind == models.KindReservationGuest {
			companionIDs = append(companionIDs, ref.ID)
		}
	}
	onStay := make(map[int64]bool)
	if len(companionIDs) > 0 {
		guests, err := r.c.store.GuestsByIDs(ctx, companionIDs)
		if err != nil {
			return nil, err
		}
		for _, g := range guests {
			onStay[g.ID] = g.ReservationID == reservationID
		}
	}

	return slices.DeleteFunc(slices.Clone(c.ProfileIDs), func(ref models.ProfileReference) bool {
		switch ref.Kind {
		case models.KindReservation:
			return ref.ID == reservationID
		case models.KindReservationGuest:
			return onStay[ref.ID]
		}
		return false
	}), nil
}

// current returns the run's copy of a profile, reading the store otherwise.
func (r *run) current(ctx context.Context, id string) (*models.Customer, error) {
	if slices.Contains(r.removed, id) {
		return nil, nil
	}
	if c, ok := r.resolver.Customer(id); ok {
		return c, nil
	}
	found, err := r.c.store.CustomersByIDs(ctx, []string{id})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	r.resolver.Put(found[0])
	return found[0], nil
}

// removeDuplicateVersions deletes every stored row of an id except the most
// recently updated one.
func (c *Controller) removeDuplicateVersions(ctx context.Context, before time.Time) (int, error) {
	versions, err := c.store.CustomerVersions(ctx, before)
	if err != nil {
		return 0, err
	}
	kept := make(map[string]models.StoredVersion)
	var stale []uint64
	for _, v := range versions {
		if keep, ok := kept[v.ID]; ok {
			c.logger.Info("Deleting duplicate profile version",
				zap.String("customer_id", v.ID),
				zap.Time("kept_updated", keep.Updated),
				zap.Time("deleted_updated", v.Updated))
			stale = append(stale, v.RowID)
			continue
		}
		kept[v.ID] = v
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := c.store.DeleteCustomerRows(ctx, stale); err != nil {
		return 0, err
	}
	return len(stale), nil
}
