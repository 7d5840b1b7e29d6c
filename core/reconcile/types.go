package reconcile

import (
	"context"
	"fmt"
	"time"
)

// Config holds the knobs of the merge job and of plan execution.
type Config struct {
	// BatchSize is the number of new reservations read per run.
	BatchSize int `mapstructure:"batch_size" default:"80" validate:"min=1"`

	// TimeBudget bounds the record loop of one run. The commit happens after it.
	TimeBudget time.Duration `mapstructure:"time_budget" default:"440s" validate:"min=1s"`

	// PreloadProfiles loads the whole customer table into memory before a run
	// instead of querying candidates remotely.
	PreloadProfiles bool `mapstructure:"preload_profiles" default:"false"`

	// ChunkSize is the number of rows per insert call.
	ChunkSize int `mapstructure:"chunk_size" default:"10" validate:"min=1,max=20"`

	// Concurrency is the number of chunks in flight at once.
	Concurrency int `mapstructure:"concurrency" default:"4" validate:"min=1"`

	// DedupCooldown is how long a profile must be left alone before the
	// dedup pass considers it.
	DedupCooldown time.Duration `mapstructure:"dedup_cooldown" default:"240m"`

	// PageSize is the page length of full table scans.
	PageSize int `mapstructure:"page_size" default:"1000" validate:"min=1"`

	// DistanceFunction is the SQL function used for remote approximate lookups.
	DistanceFunction string `mapstructure:"distance_function" default:"levenshtein" validate:"required"`
}

// ApplyOptions builds execution options from the config.
func (c Config) ApplyOptions(confirmed, dryRun bool) Options {
	return Options{
		ChunkSize:   c.ChunkSize,
		Concurrency: c.Concurrency,
		Confirmed:   confirmed,
		DryRun:      dryRun,
	}
}

// Plan lists the changes to make to one table.
type Plan[T any] struct {
	// Deletes holds the ids whose rows are removed.
	Deletes []string `json:"deletes"`

	// Inserts holds the rows written after the deletes.
	Inserts []T `json:"inserts"`
}

// Summary returns aggregate counts for the plan.
func (p *Plan[T]) Summary() PlanSummary {
	return PlanSummary{Deletes: len(p.Deletes), Inserts: len(p.Inserts)}
}

// Empty reports whether the plan changes nothing.
func (p *Plan[T]) Empty() bool {
	return len(p.Deletes) == 0 && len(p.Inserts) == 0
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	Deletes int `json:"deletes"`
	Inserts int `json:"inserts"`
}

// Mutator writes plan steps to a store.
type Mutator[T any] interface {
	DeleteBatch(ctx context.Context, ids []string) error
	InsertBatch(ctx context.Context, rows []T) error
}

// Transactor is a Mutator that can run a whole plan in one transaction.
// ApplyPlan prefers it, so a failed insert also rolls back the deletes.
type Transactor[T any] interface {
	Mutator[T]
	Transaction(ctx context.Context, fn func(tx Mutator[T]) error) error
}

// Options controls plan execution.
type Options struct {
	// ChunkSize is the number of rows per insert call.
	ChunkSize int

	// Concurrency is the number of insert calls in flight at once.
	Concurrency int

	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// Confirmed indicates the caller has confirmed destructive actions.
	// If false, mutations will not execute regardless of DryRun.
	Confirmed bool
}

// Result reports what ApplyPlan wrote.
type Result struct {
	Applied  bool `json:"applied"`
	Deleted  int  `json:"deleted"`
	Inserted int  `json:"inserted"`
}

// Step names a phase of plan execution.
type Step string

const (
	StepDelete Step = "delete"
	StepInsert Step = "insert"
)

// StepError wraps the error of a failed step.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
