package engine

import (
	"fmt"
	"sync"
)

// TransactionRunner is the engine's transactional-scope primitive. The host
// records the labeled scope for undo/redo; fn runs inside it. A runner that
// fails before or after fn is an infrastructure fault, distinct from fn
// itself failing.
type TransactionRunner func(label string, fn func() error) error

// PassthroughTransaction runs fn with no transactional scope. Used by hosts
// that have no undo machinery.
func PassthroughTransaction(label string, fn func() error) error {
	return fn()
}

// WriteOutcome separates a failure of the caller-supplied action from a
// failure of the scheduling/transaction machinery. Callers need the
// distinction: one means the mutation logic failed, the other means the
// infrastructure did.
type WriteOutcome struct {
	ActionErr error
	InfraErr  error
}

type writeJob struct {
	label string
	fn    func() error
	out   chan WriteOutcome
}

// Arena models the engine's shared mutable code model: arbitrarily many
// concurrent readers, structural mutation only on one designated writer
// goroutine, every mutation wrapped in the engine's transactional scope.
//
// Read guards are scoped and release deterministically on every exit path,
// including panics. Two scheduled writes are strictly serialized by the
// writer goroutine.
type Arena struct {
	mu   sync.RWMutex
	tx   TransactionRunner
	jobs chan writeJob

	closeOnce sync.Once
	done      chan struct{}
}

// NewArena creates an arena and starts its writer goroutine. A nil tx
// defaults to PassthroughTransaction.
func NewArena(tx TransactionRunner) *Arena {
	if tx == nil {
		tx = PassthroughTransaction
	}
	a := &Arena{
		tx:   tx,
		jobs: make(chan writeJob, 16),
		done: make(chan struct{}),
	}
	go a.writerLoop()
	return a
}

// Read runs fn under the shared read lock. The lock is held only for the
// duration of fn and is released even if fn panics.
func (a *Arena) Read(fn func() error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return fn()
}

// Schedule submits fn to the writer goroutine under the given command
// label. The returned channel receives exactly one outcome. Scheduling
// fails only when the arena is closed.
//
// Schedule never blocks on the work itself; the caller decides how long to
// wait on the outcome channel. Work that outlives the caller's patience
// still runs to completion on the writer goroutine.
func (a *Arena) Schedule(label string, fn func() error) (<-chan WriteOutcome, error) {
	out := make(chan WriteOutcome, 1)
	select {
	case a.jobs <- writeJob{label: label, fn: fn, out: out}:
		return out, nil
	case <-a.done:
		return nil, fmt.Errorf("arena is closed")
	}
}

// Close stops the writer goroutine. Already-queued jobs are drained and
// reported as infrastructure failures.
func (a *Arena) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
	})
}

func (a *Arena) writerLoop() {
	for {
		select {
		case job := <-a.jobs:
			job.out <- a.runWrite(job)
		case <-a.done:
			a.drain()
			return
		}
	}
}

func (a *Arena) drain() {
	for {
		select {
		case job := <-a.jobs:
			job.out <- WriteOutcome{InfraErr: fmt.Errorf("arena closed before %q ran", job.label)}
		default:
			return
		}
	}
}

// runWrite executes one job under the exclusive lock, inside the
// transactional scope. A panic in the action is an action failure; a panic
// or error in the transaction machinery is an infrastructure failure.
func (a *Arena) runWrite(job writeJob) (out WriteOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out.InfraErr = fmt.Errorf("transaction machinery panicked: %v", r)
		}
	}()

	a.mu.Lock()
	defer a.mu.Unlock()

	var actionErr error
	wrapped := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return job.fn()
	}

	txErr := a.tx(job.label, func() error {
		actionErr = wrapped()
		return actionErr
	})

	out.ActionErr = actionErr
	if txErr != nil && actionErr == nil {
		out.InfraErr = txErr
	}
	return out
}
