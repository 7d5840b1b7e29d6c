package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"customer-merger/core/lock"
	"customer-merger/core/storage"
	"customer-merger/feature/bulk"
	"customer-merger/feature/online"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for merge rebuild
	dryRunRebuild bool
	yesConfirm    bool
)

// mergeCmd is the parent command for merge jobs.
var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge reservations and guests into customer profiles",
}

var mergeRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Fold records updated since the last run into profiles",
	RunE:  runMerge,
}

var mergeDedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Repair records claimed by several profiles and drop stale versions",
	RunE:  runDedup,
}

var mergeRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild every profile from scratch (report + optionally replace)",
	Long: `Resolve every reservation and guest into a fresh set of profiles and
replace the customer table with them. The current table is archived to object
storage first when archiving is enabled.

Examples:
  # Plan only
  merge rebuild --dry-run

  # Replace with interactive confirmation
  merge rebuild

  # Replace with auto-confirm (non-interactive)
  merge rebuild --yes`,
	RunE: runRebuild,
}

func init() {
	mergeCmd.AddCommand(mergeRunCmd, mergeDedupCmd, mergeRebuildCmd)

	mergeRebuildCmd.Flags().BoolVar(&dryRunRebuild, "dry-run", false, "Plan only, never write")
	mergeRebuildCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(mergeCmd)
}

// newService wires the merge service the same way the server does.
func newService(ctx context.Context, rt *runtime) (*online.Service, error) {
	locker, err := lock.New(ctx, rt.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to create run lock: %w", err)
	}
	archiver, err := storage.FromConfig(rt.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}
	controller := online.NewController(rt.store, rt.cfg.Merge, rt.logger)
	return online.NewService(controller, rt.store, locker, archiver, rt.logger), nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	svc, err := newService(ctx, rt)
	if err != nil {
		return err
	}
	status, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("merge run failed: %w", err)
	}
	rt.logger.Info("Merge status",
		zap.Time("high_water_mark", status.HighWaterMark),
		zap.Int("fetched", status.Fetched),
		zap.Int("processed", status.Processed),
		zap.Int("new_reservations", status.NewReservations),
		zap.Int("new_guests", status.NewGuests),
		zap.Int("new_profiles", status.NewProfiles),
		zap.Int("updated_profiles", status.UpdatedProfiles),
		zap.Bool("budget_exceeded", status.BudgetExceeded),
		zap.Bool("deferred", status.Deferred))
	return nil
}

func runDedup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	svc, err := newService(ctx, rt)
	if err != nil {
		return err
	}
	report, err := svc.Dedup(ctx)
	if err != nil {
		return fmt.Errorf("dedup failed: %w", err)
	}
	rt.logger.Info("Dedup report",
		zap.Int("scanned", report.Scanned),
		zap.Int("disputed_guests", report.DisputedGuests),
		zap.Int("disputed_reservations", report.DisputedReservations),
		zap.Int("unresolved", report.Unresolved),
		zap.Int("recreated", report.Recreated),
		zap.Int("removed", report.Removed),
		zap.Int("duplicate_rows", report.DuplicateRows),
		zap.Bool("deferred", report.Deferred))
	return nil
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	l := rt.logger
	defer l.Sync()

	archiver, err := storage.FromConfig(rt.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}
	if err := archiver.EnsureBucket(ctx); err != nil {
		return err
	}

	locker, err := lock.New(ctx, rt.cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to create run lock: %w", err)
	}
	release, err := locker.Acquire(ctx, "merge")
	if err != nil {
		return fmt.Errorf("failed to acquire merge lock: %w", err)
	}
	defer release(context.WithoutCancel(ctx))

	loader := bulk.NewLoader(rt.store, archiver, rt.cfg.Merge, l)

	// Step 1: Plan (always runs)
	l.Info("Planning rebuild...")
	rb, err := loader.Plan(ctx)
	if err != nil {
		return fmt.Errorf("failed to plan rebuild: %w", err)
	}
	printRebuildReport(l, rb.Report)

	if dryRunRebuild {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if rb.Plan.Empty() {
		l.Info("No actions required.")
		return nil
	}

	// Step 2: Apply (if confirmed)
	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}
	report, err := loader.Apply(ctx, rb, rt.cfg.Merge.ApplyOptions(true, false))
	if err != nil {
		return fmt.Errorf("failed to apply rebuild: %w", err)
	}
	l.Info("Rebuild applied",
		zap.Int("deleted", report.Result.Deleted),
		zap.Int("inserted", report.Result.Inserted),
		zap.String("snapshot", report.Snapshot))
	return nil
}

// printRebuildReport logs the planned rebuild.
func printRebuildReport(l *zap.Logger, r bulk.Report) {
	l.Info("Rebuild report",
		zap.Int("reservations", r.Reservations),
		zap.Int("guests", r.Guests),
		zap.Int("created", r.Created),
		zap.Int("merged", r.Merged),
		zap.Int("duplicates", r.Duplicates),
		zap.Int("skipped", r.Skipped),
		zap.Int("guest_profiles", r.GuestProfiles),
		zap.Int("companions", r.Companions),
	)
	l.Info("Planned actions",
		zap.Int("existing_profiles", r.Existing),
		zap.Int("deletes", r.Plan.Deletes),
		zap.Int("inserts", r.Plan.Inserts),
	)
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to replace every customer profile: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
