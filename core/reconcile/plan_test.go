package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMutator struct {
	mu          sync.Mutex
	deleteCalls [][]string
	insertCalls [][]int
	deleteErr   error
	insertErr   error
	failOn      int
}

func (m *mockMutator) DeleteBatch(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls = append(m.deleteCalls, ids)
	return m.deleteErr
}

func (m *mockMutator) InsertBatch(_ context.Context, rows []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil && len(rows) > 0 && rows[0] == m.failOn {
		return m.insertErr
	}
	m.insertCalls = append(m.insertCalls, rows)
	return nil
}

func (m *mockMutator) inserted() int {
	n := 0
	for _, call := range m.insertCalls {
		n += len(call)
	}
	return n
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// TestApplyPlan_RequiresConfirmation tests the safety gate.
func TestApplyPlan_RequiresConfirmation(t *testing.T) {
	plan := &Plan[int]{Deletes: []string{"a"}, Inserts: []int{1}}

	tests := []struct {
		name string
		opts Options
	}{
		{"not confirmed", Options{Confirmed: false}},
		{"dry run", Options{Confirmed: true, DryRun: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockMutator{}
			res, err := ApplyPlan(context.Background(), m, plan, tt.opts)
			assert.NoError(t, err)
			assert.False(t, res.Applied)
			assert.Empty(t, m.deleteCalls)
			assert.Empty(t, m.insertCalls)
		})
	}
}

// TestApplyPlan_DeletesThenChunkedInserts tests that deletes go out in one call
// and inserts are chunked.
func TestApplyPlan_DeletesThenChunkedInserts(t *testing.T) {
	m := &mockMutator{}
	plan := &Plan[int]{Deletes: []string{"R-1", "R-2", "G-3"}, Inserts: seq(25)}

	res, err := ApplyPlan(context.Background(), m, plan, Options{ChunkSize: 10, Concurrency: 2, Confirmed: true})
	require.NoError(t, err)

	assert.True(t, res.Applied)
	assert.Equal(t, 3, res.Deleted)
	assert.Equal(t, 25, res.Inserted)
	assert.Equal(t, [][]string{{"R-1", "R-2", "G-3"}}, m.deleteCalls)
	assert.Len(t, m.insertCalls, 3)
	assert.Equal(t, 25, m.inserted())
}

// TestApplyPlan_DeleteFailureStopsInserts tests that a failed delete writes nothing else.
func TestApplyPlan_DeleteFailureStopsInserts(t *testing.T) {
	boom := errors.New("streaming buffer")
	m := &mockMutator{deleteErr: boom}
	plan := &Plan[int]{Deletes: []string{"R-1"}, Inserts: seq(3)}

	res, err := ApplyPlan(context.Background(), m, plan, Options{ChunkSize: 1, Concurrency: 1, Confirmed: true})

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepDelete, stepErr.Step)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, res.Inserted)
	assert.Empty(t, m.insertCalls)
}

// TestApplyPlan_InsertFailure tests that an insert failure is tagged and
// later windows are not started.
func TestApplyPlan_InsertFailure(t *testing.T) {
	boom := errors.New("insert failed")
	m := &mockMutator{insertErr: boom, failOn: 0}
	plan := &Plan[int]{Inserts: seq(10)}

	res, err := ApplyPlan(context.Background(), m, plan, Options{ChunkSize: 2, Concurrency: 2, Confirmed: true})

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepInsert, stepErr.Step)
	assert.LessOrEqual(t, res.Inserted, 2, "only the other chunk of the first window may land")
}

// TestForEachWindow_BoundsConcurrency tests the in-flight limit and the
// barrier between windows.
func TestForEachWindow_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	var calls atomic.Int32

	err := ForEachWindow(context.Background(), seq(20), 1, 3, func(_ context.Context, _ []int) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		calls.Add(1)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(20), calls.Load())
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

// TestForEachWindow_CanceledContext tests that no window starts after cancellation.
func TestForEachWindow_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := ForEachWindow(ctx, seq(5), 1, 1, func(context.Context, []int) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestPlanSummary(t *testing.T) {
	plan := &Plan[int]{Deletes: []string{"a", "b"}, Inserts: seq(3)}
	assert.Equal(t, PlanSummary{Deletes: 2, Inserts: 3}, plan.Summary())
	assert.False(t, plan.Empty())
	assert.True(t, (&Plan[int]{}).Empty())
}

func TestConfig_ApplyOptions(t *testing.T) {
	cfg := Config{ChunkSize: 5, Concurrency: 2}
	assert.Equal(t, Options{ChunkSize: 5, Concurrency: 2, Confirmed: true}, cfg.ApplyOptions(true, false))
}

// txMutator stages writes and keeps them only when the transaction succeeds.
type txMutator struct {
	committed *mockMutator
	staged    *mockMutator
	rollbacks int
}

func (m *txMutator) DeleteBatch(ctx context.Context, ids []string) error {
	return m.committed.DeleteBatch(ctx, ids)
}

func (m *txMutator) InsertBatch(ctx context.Context, rows []int) error {
	return m.committed.InsertBatch(ctx, rows)
}

func (m *txMutator) Transaction(_ context.Context, fn func(tx Mutator[int]) error) error {
	if err := fn(m.staged); err != nil {
		m.rollbacks++
		return err
	}
	m.committed.deleteCalls = append(m.committed.deleteCalls, m.staged.deleteCalls...)
	m.committed.insertCalls = append(m.committed.insertCalls, m.staged.insertCalls...)
	return nil
}

func TestApplyPlan_TransactionCommits(t *testing.T) {
	m := &txMutator{committed: &mockMutator{}, staged: &mockMutator{}}
	plan := &Plan[int]{Deletes: []string{"R-1"}, Inserts: seq(5)}

	res, err := ApplyPlan(context.Background(), m, plan, Options{ChunkSize: 2, Concurrency: 4, Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, Result{Applied: true, Deleted: 1, Inserted: 5}, res)
	assert.Equal(t, [][]string{{"R-1"}}, m.committed.deleteCalls)
	assert.Equal(t, [][]int{{0, 1}, {2, 3}, {4}}, m.committed.insertCalls, "chunks run in order inside a transaction")
}

func TestApplyPlan_TransactionRollsBackInsertFailure(t *testing.T) {
	boom := errors.New("insert failed")
	m := &txMutator{committed: &mockMutator{}, staged: &mockMutator{insertErr: boom, failOn: 2}}
	plan := &Plan[int]{Deletes: []string{"R-1"}, Inserts: seq(5)}

	res, err := ApplyPlan(context.Background(), m, plan, Options{ChunkSize: 2, Concurrency: 1, Confirmed: true})
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepInsert, stepErr.Step)
	assert.Equal(t, Result{Applied: true}, res)
	assert.Equal(t, 1, m.rollbacks)
	assert.Empty(t, m.committed.deleteCalls)
	assert.Empty(t, m.committed.insertCalls)
}
