package bulk

import (
	"context"
	"fmt"

	"customer-merger/core/reconcile"
	"customer-merger/core/storage"
	"customer-merger/feature/merge"
	"customer-merger/feature/profile/models"
	"customer-merger/feature/store"

	"go.uber.org/zap"
)

// snapshotName names the archived copy of the table being replaced.
const snapshotName = "customers-snapshot"

// Report summarizes a rebuild.
type Report struct {
	Reservations int `json:"reservations"`
	Guests       int `json:"guests"`

	Created    int `json:"created"`
	Merged     int `json:"merged"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`

	GuestProfiles int `json:"guestProfiles"`
	Companions    int `json:"companions"`

	Existing int                   `json:"existing"`
	Plan     reconcile.PlanSummary `json:"plan"`

	// Snapshot is the object key of the archived table, empty when archiving
	// is disabled or nothing was applied.
	Snapshot string           `json:"snapshot,omitempty"`
	Result   reconcile.Result `json:"result"`
}

// Rebuild is a planned replacement of the customer table.
type Rebuild struct {
	Plan     *reconcile.Plan[*models.Customer]
	Existing []*models.Customer
	Report   Report
}

// Loader plans and applies full rebuilds.
type Loader struct {
	store    *store.Store
	archiver *storage.Archiver
	cfg      reconcile.Config
	logger   *zap.Logger
}

// NewLoader creates a loader. archiver may be nil.
func NewLoader(s *store.Store, archiver *storage.Archiver, cfg reconcile.Config, logger *zap.Logger) *Loader {
	return &Loader{store: s, archiver: archiver, cfg: cfg, logger: logger}
}

// Plan resolves every stored record into profiles and plans replacing the
// customer table with them. Nothing is written.
func (l *Loader) Plan(ctx context.Context) (*Rebuild, error) {
	rb := &Rebuild{}
	resolver := merge.NewResolver()

	var afterID int64
	for {
		page, err := l.store.ReservationPage(ctx, afterID, l.cfg.PageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		ids := make([]int64, 0, len(page))
		for _, r := range page {
			ids = append(ids, r.ID)
			switch _, outcome := resolver.AddReservation(r); outcome {
			case merge.OutcomeCreated:
				rb.Report.Created++
			case merge.OutcomeMerged:
				rb.Report.Merged++
			case merge.OutcomeDuplicate:
				rb.Report.Duplicates++
			default:
				rb.Report.Skipped++
			}
		}
		rb.Report.Reservations += len(page)

		guests, err := l.store.GuestsForReservations(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, g := range guests {
			result := resolver.AddGuest(g)
			if result.CreatedID != "" {
				rb.Report.GuestProfiles++
			}
			if result.CompanionOf != "" {
				rb.Report.Companions++
			}
		}
		rb.Report.Guests += len(guests)

		l.logger.Debug("Resolved reservation page",
			zap.Int64("after_id", afterID),
			zap.Int("reservations", len(page)),
			zap.Int("guests", len(guests)),
			zap.Int("profiles", resolver.Len()))

		afterID = page[len(page)-1].ID
		if len(page) < l.cfg.PageSize {
			break
		}
	}

	existing, err := l.store.AllCustomers(ctx)
	if err != nil {
		return nil, err
	}
	rb.Existing = existing
	rb.Report.Existing = len(existing)

	rb.Plan = &reconcile.Plan[*models.Customer]{Inserts: resolver.Customers()}
	for _, c := range existing {
		rb.Plan.Deletes = append(rb.Plan.Deletes, c.ID)
	}
	rb.Report.Plan = rb.Plan.Summary()

	l.logger.Info("Planned rebuild",
		zap.Int("reservations", rb.Report.Reservations),
		zap.Int("guests", rb.Report.Guests),
		zap.Int("existing", rb.Report.Existing),
		zap.Int("profiles", len(rb.Plan.Inserts)))
	return rb, nil
}

// Apply archives the current table and replaces it with the planned
// profiles in one transaction, so a failed insert leaves the table as it was.
// It does nothing unless opts is confirmed and not a dry run.
func (l *Loader) Apply(ctx context.Context, rb *Rebuild, opts reconcile.Options) (Report, error) {
	if !opts.Confirmed || opts.DryRun {
		l.logger.Info("Rebuild not applied", zap.Bool("confirmed", opts.Confirmed), zap.Bool("dry_run", opts.DryRun))
		return rb.Report, nil
	}

	if len(rb.Existing) > 0 {
		key, err := l.archiver.Save(ctx, snapshotName, rb.Existing)
		if err != nil {
			return rb.Report, fmt.Errorf("failed to archive customers before rebuild: %w", err)
		}
		rb.Report.Snapshot = key
		if key != "" {
			l.logger.Info("Archived customer table", zap.String("key", key), zap.Int("customers", len(rb.Existing)))
		}
	}

	result, err := reconcile.ApplyPlan(ctx, l.store.Mutator(), rb.Plan, opts)
	rb.Report.Result = result
	if err != nil {
		return rb.Report, fmt.Errorf("failed to replace customers: %w", err)
	}
	l.logger.Info("Rebuild applied", zap.Int("deleted", result.Deleted), zap.Int("inserted", result.Inserted))
	return rb.Report, nil
}
