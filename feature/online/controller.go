package online

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"customer-merger/core/database"
	"customer-merger/core/reconcile"
	"customer-merger/feature/merge"
	"customer-merger/feature/profile"
	"customer-merger/feature/profile/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// epoch is the high-water mark used while the customer table is empty.
var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// cursorName identifies the incremental merge in the cursor table.
const cursorName = "incremental-merge"

// Controller folds newly arrived records into stored customer profiles.
// Runs are serialized; a run never mutates a profile concurrently.
type Controller struct {
	store  Store
	cfg    reconcile.Config
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewController creates a controller.
func NewController(store Store, cfg reconcile.Config, logger *zap.Logger) *Controller {
	return &Controller{store: store, cfg: cfg, logger: logger, now: time.Now}
}

// Run processes one batch of reservations after the high-water mark and
// commits the touched profiles.
func (c *Controller) Run(ctx context.Context) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var status Status
	r, err := c.newRun(ctx, &status)
	if err != nil {
		return status, err
	}

	hwm, err := c.highWaterMark(ctx)
	if err != nil {
		return status, err
	}
	status.HighWaterMark = hwm
	c.logger.Info("Checking latest merged update", zap.Time("high_water_mark", hwm))

	reservations, err := c.store.ReservationsAfter(ctx, hwm, c.cfg.BatchSize)
	if err != nil {
		return status, err
	}
	status.Fetched = len(reservations)
	if len(reservations) == 0 {
		return status, nil
	}

	minID, maxID := reservations[0].ID, reservations[0].ID
	for _, res := range reservations {
		minID = min(minID, res.ID)
		maxID = max(maxID, res.ID)
	}
	guests, err := c.store.CompanionGuests(ctx, minID, maxID)
	if err != nil {
		return status, err
	}
	byReservation := make(map[int64][]models.Guest)
	for _, g := range guests {
		byReservation[g.ReservationID] = append(byReservation[g.ReservationID], g)
	}
	c.logger.Info("Found new records",
		zap.Int("reservations", len(reservations)),
		zap.Int("guests", len(guests)))

	start := c.now()
	for _, res := range reservations {
		if err := r.addReservation(ctx, res, byReservation[res.ID]); err != nil {
			return status, err
		}
		status.Processed++
		if elapsed := c.now().Sub(start); elapsed > c.cfg.TimeBudget {
			status.BudgetExceeded = status.Processed < len(reservations)
			c.logger.Warn("Time budget exhausted",
				zap.Duration("elapsed", elapsed),
				zap.Int("processed", status.Processed),
				zap.Int("fetched", len(reservations)))
			break
		}
	}

	deferred, err := r.commit(ctx)
	if err != nil {
		return status, err
	}
	status.Deferred = deferred

	// Records that produced no profile never move the customer timestamp, so
	// the cursor carries the run past them.
	if !deferred && status.Processed > 0 {
		if last := reservations[status.Processed-1].Updated; last.After(hwm) {
			if err := c.store.SaveCursor(ctx, cursorName, last); err != nil {
				return status, err
			}
		}
	}

	c.logger.Info("Merge run finished",
		zap.Int("new_reservations", status.NewReservations),
		zap.Int("new_guests", status.NewGuests),
		zap.Int("new_profiles", status.NewProfiles),
		zap.Int("updated_profiles", status.UpdatedProfiles),
		zap.Bool("deferred", status.Deferred))
	return status, nil
}

// highWaterMark is the later of the newest committed profile and the saved
// cursor.
func (c *Controller) highWaterMark(ctx context.Context) (time.Time, error) {
	hwm, ok, err := c.store.LatestCustomerUpdate(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		hwm = epoch
	}
	cursor, ok, err := c.store.Cursor(ctx, cursorName)
	if err != nil {
		return time.Time{}, err
	}
	if ok && cursor.After(hwm) {
		hwm = cursor
	}
	return hwm, nil
}

// run holds the state of one invocation.
type run struct {
	c        *Controller
	status   *Status
	resolver *merge.Resolver

	created []string
	updated []string
	removed []string
}

func (c *Controller) newRun(ctx context.Context, status *Status) (*run, error) {
	r := &run{c: c, status: status, resolver: merge.NewResolver()}
	if !c.cfg.PreloadProfiles {
		return r, nil
	}
	customers, err := c.store.AllCustomers(ctx)
	if err != nil {
		return nil, err
	}
	for _, cust := range customers {
		r.resolver.Put(cust)
	}
	c.logger.Info("Preloaded customer profiles", zap.Int("count", len(customers)))
	return r, nil
}

func (r *run) addReservation(ctx context.Context, res models.Reservation, guests []models.Guest) error {
	stay := res.Stay()
	r.resolver.RememberStay(stay)

	customer, err := r.find(ctx, res.Identity())
	if err != nil {
		return err
	}

	switch {
	case customer != nil:
		if customer.HasReference(res.ID, models.KindReservation) {
			if customer, err = r.recreate(ctx, customer); err != nil {
				return err
			}
		} else {
			r.status.NewReservations++
			customer = profile.MergeReservation(customer, res)
		}
		r.touch(customer.ID)
		r.status.UpdatedProfiles++

	default:
		created, ok := profile.FromReservation(res)
		if !ok {
			r.c.logger.Debug("Skipping reservation without identity", zap.Int64("reservation_id", res.ID))
			break
		}
		r.status.NewReservations++
		customer, err = r.adopt(ctx, created, models.KindReservation, res.ID, func(c *models.Customer) *models.Customer {
			return profile.MergeReservation(c, res)
		})
		if err != nil {
			return err
		}
	}

	if customer != nil {
		r.resolver.Put(customer)
		r.resolver.Link(res.ID, customer.ID)

		replay := false
		for _, g := range guests {
			r.status.NewGuests++
			if profile.SamePerson(customer.Identity(), g.Identity()) {
				continue
			}
			if customer.HasReference(g.ID, models.KindReservationGuest) {
				replay = true
				continue
			}
			customer = profile.AddCompanion(customer, stay, g)
		}
		if replay {
			if customer, err = r.recreate(ctx, customer); err != nil {
				return err
			}
		}
		r.resolver.Put(customer)
	}

	for _, g := range guests {
		if err := r.addGuestProfile(ctx, res, stay, g, customer); err != nil {
			return err
		}
	}
	return nil
}

// addGuestProfile folds a companion into their own profile when they are
// somebody other than the booker.
func (r *run) addGuestProfile(ctx context.Context, res models.Reservation, stay models.Stay, g models.Guest, booker *models.Customer) error {
	id := g.Identity()
	if !id.HasKey() || profile.SamePerson(res.Identity(), id) {
		return nil
	}

	existing, err := r.find(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		created, ok := profile.FromGuest(stay, g)
		if !ok {
			return nil
		}
		c, err := r.adopt(ctx, created, models.KindGuest, g.ID, func(c *models.Customer) *models.Customer {
			return profile.MergeGuest(c, stay, g)
		})
		if err != nil {
			return err
		}
		r.resolver.Put(c)
		return nil
	}
	if booker != nil && existing.ID == booker.ID {
		return nil
	}

	if existing.HasReference(g.ID, models.KindGuest) {
		if existing, err = r.recreate(ctx, existing); err != nil {
			return err
		}
	} else {
		existing = profile.MergeGuest(existing, stay, g)
	}
	r.resolver.Put(existing)
	r.touch(existing.ID)
	r.status.UpdatedProfiles++
	return nil
}

// adopt registers a freshly built profile. Ids are derived from the first
// record, so a profile with the same id may already exist when the record's
// identity changed between versions. That profile is replayed instead.
func (r *run) adopt(ctx context.Context, created *models.Customer, kind models.RefKind, recordID int64, fold func(*models.Customer) *models.Customer) (*models.Customer, error) {
	existing, ok := r.resolver.Customer(created.ID)
	if !ok && !r.c.cfg.PreloadProfiles && !slices.Contains(r.removed, created.ID) {
		stored, err := r.c.store.CustomersByIDs(ctx, []string{created.ID})
		if err != nil {
			return nil, err
		}
		if len(stored) > 0 {
			existing, ok = stored[0], true
		}
	}
	if !ok {
		r.markCreated(created.ID)
		r.status.NewProfiles++
		return created, nil
	}

	r.c.logger.Info("Profile id already taken, replaying it",
		zap.String("customer_id", created.ID),
		zap.Int64("record_id", recordID))
	var out *models.Customer
	if existing.HasReference(recordID, kind) {
		var err error
		if out, err = r.recreate(ctx, existing); err != nil {
			return nil, err
		}
	} else {
		out = fold(existing)
	}
	r.touch(out.ID)
	r.status.UpdatedProfiles++
	return out, nil
}

// find resolves an identity against stored profiles and the profiles touched
// this run. Profiles held by the run take precedence over their stored copy.
func (r *run) find(ctx context.Context, id models.Identity) (*models.Customer, error) {
	if !id.HasKey() {
		return nil, nil
	}

	var candidates []*models.Customer
	seen := make(map[string]bool)
	add := func(c *models.Customer) {
		if seen[c.ID] || slices.Contains(r.removed, c.ID) {
			return
		}
		seen[c.ID] = true
		if local, ok := r.resolver.Customer(c.ID); ok {
			c = local
		}
		candidates = append(candidates, c)
	}

	if !r.c.cfg.PreloadProfiles {
		remote, err := r.remoteCandidates(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, c := range remote {
			add(c)
		}
	}
	for _, cid := range r.resolver.Candidates(id) {
		if c, ok := r.resolver.Customer(cid); ok {
			add(c)
		}
	}
	return merge.Best(candidates, id), nil
}

// remoteCandidates queries the store for each identity field in parallel and
// returns the results in ssn, email, phone, name order.
func (r *run) remoteCandidates(ctx context.Context, id models.Identity) ([]*models.Customer, error) {
	var results [4][]*models.Customer
	g, gctx := errgroup.WithContext(ctx)

	if id.SSN != "" {
		g.Go(func() (err error) {
			results[0], err = r.c.store.CustomersBySSN(gctx, id.SSN)
			return err
		})
	}
	if id.Email != "" {
		g.Go(func() (err error) {
			results[1], err = r.c.store.CustomersNear(gctx, models.FieldEmail, id.Email, profile.MatchDistance)
			return err
		})
	}
	if id.Phone != "" {
		g.Go(func() (err error) {
			results[2], err = r.c.store.CustomersNear(gctx, models.FieldPhone, id.Phone, profile.MatchDistance)
			return err
		})
	}
	if name, ok := id.FullName(); ok {
		g.Go(func() (err error) {
			results[3], err = r.c.store.CustomersNear(gctx, models.FieldName, name, profile.MatchDistance)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to look up candidates: %w", err)
	}
	return slices.Concat(results[:]...), nil
}

// recreate rebuilds c from its references using the latest stored records.
// The profile keeps its id.
func (r *run) recreate(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	reservationIDs, guestIDs := profile.References(c.ProfileIDs)

	guests, err := r.c.store.GuestsByIDs(ctx, guestIDs)
	if err != nil {
		return nil, err
	}
	for _, g := range guests {
		reservationIDs = append(reservationIDs, g.ReservationID)
	}
	slices.Sort(reservationIDs)
	reservationIDs = slices.Compact(reservationIDs)

	reservations, err := r.c.store.ReservationsByIDs(ctx, reservationIDs)
	if err != nil {
		return nil, err
	}

	rebuilt, err := profile.Rebuild(c.ProfileIDs, profile.NewRecordSet(reservations, guests))
	if err != nil {
		return nil, fmt.Errorf("failed to recreate customer %s: %w", c.ID, err)
	}
	if rebuilt == nil {
		r.c.logger.Warn("Nothing to replay, keeping profile", zap.String("customer_id", c.ID))
		return c, nil
	}
	rebuilt.ID = c.ID
	r.c.logger.Debug("Recreated profile",
		zap.String("customer_id", c.ID),
		zap.Int("references", len(c.ProfileIDs)))
	return rebuilt, nil
}

func (r *run) markCreated(id string) {
	if !slices.Contains(r.created, id) {
		r.created = append(r.created, id)
	}
}

// touch marks a stored profile for replacement.
func (r *run) touch(id string) {
	if slices.Contains(r.created, id) || slices.Contains(r.updated, id) {
		return
	}
	r.removed = slices.DeleteFunc(r.removed, func(s string) bool { return s == id })
	r.updated = append(r.updated, id)
}

// drop marks a stored profile for deletion.
func (r *run) drop(id string) {
	r.updated = slices.DeleteFunc(r.updated, func(s string) bool { return s == id })
	r.created = slices.DeleteFunc(r.created, func(s string) bool { return s == id })
	if !slices.Contains(r.removed, id) {
		r.removed = append(r.removed, id)
	}
	r.resolver.Remove(id)
}

// commit replaces every updated or dropped profile with the current version
// of updated and created ones in one transaction. A transient conflict while
// deleting leaves the store untouched; it is logged and reported as deferred.
func (r *run) commit(ctx context.Context) (deferred bool, err error) {
	plan := &reconcile.Plan[*models.Customer]{
		Deletes: slices.Concat(r.updated, r.removed),
	}
	for _, id := range slices.Concat(r.updated, r.created) {
		if c, ok := r.resolver.Customer(id); ok {
			plan.Inserts = append(plan.Inserts, c)
		}
	}
	if plan.Empty() {
		return false, nil
	}

	if err := r.c.store.ReplaceCustomers(ctx, plan.Deletes, plan.Inserts); err != nil {
		var stepErr *reconcile.StepError
		if errors.As(err, &stepErr) && stepErr.Step == reconcile.StepDelete && database.IsTransient(err) {
			r.c.logger.Warn("Transient conflict while deleting profiles, retrying next run",
				zap.Int("deletes", len(plan.Deletes)),
				zap.Error(err))
			return true, nil
		}
		return false, fmt.Errorf("failed to commit customers: %w", err)
	}

	r.c.logger.Info("Committed customers",
		zap.Int("deleted", len(plan.Deletes)),
		zap.Int("inserted", len(plan.Inserts)))
	return false, nil
}
