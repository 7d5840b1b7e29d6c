// Package reconcile applies computed changes to the customer store in
// bounded, chunked steps.
//
// Callers compute a Plan in memory (rows to delete, rows to insert) and hand
// it to ApplyPlan together with a Mutator for the target table. Nothing is
// written unless the options confirm the run and dry-run is off.
//
// # Execution
//
// Deletes go out in a single call. Inserts are split into chunks of
// Options.ChunkSize and issued Options.Concurrency chunks at a time; every
// window waits for all of its chunks before the next one starts, so one
// failing call stops the run after at most one window.
//
// # Usage Example
//
//	plan := &reconcile.Plan[*models.Customer]{
//	    Deletes: updatedIDs,
//	    Inserts: rows,
//	}
//	res, err := reconcile.ApplyPlan(ctx, s.Mutator(), plan, cfg.ApplyOptions(true, false))
//
// A Mutator that also implements Transactor gets the whole plan inside one
// transaction: a failed insert rolls back the deletes and the Result reports
// nothing written.
//
// A failed step is reported as a *StepError so callers can tell a failed
// delete (nothing written yet) from a failed insert.
package reconcile
