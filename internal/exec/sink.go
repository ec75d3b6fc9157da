package exec

import (
	"sync/atomic"

	"crb/internal/engine"
	"crb/internal/errors"
)

// ResultSink is the callback surface handed to ExecuteWithCallback bodies.
// The first of Success, Failure, or Complete wins; every later call on the
// same sink is a cheap no-op. Safe for use across goroutines: completion is
// a single atomic compare-and-set, no locks.
type ResultSink struct {
	state  atomic.Int32
	result engine.OperationResult
	done   chan struct{}
}

// NewResultSink creates an unset sink.
func NewResultSink() *ResultSink {
	return &ResultSink{done: make(chan struct{})}
}

// Success completes the sink with a success result.
func (s *ResultSink) Success(message string, affectedFiles ...string) {
	s.complete(engine.Succeeded(message, affectedFiles...))
}

// Failure completes the sink with a logical failure.
func (s *ResultSink) Failure(message string) {
	s.complete(engine.Failed(errors.RefactoringFailed, message))
}

// Complete completes the sink with an explicit result.
func (s *ResultSink) Complete(result engine.OperationResult) {
	s.complete(result)
}

func (s *ResultSink) complete(result engine.OperationResult) {
	if !s.state.CompareAndSwap(0, 1) {
		return // a result is already in; discard, do not overwrite
	}
	s.result = result
	close(s.done)
}

// Done is closed once the sink holds a result.
func (s *ResultSink) Done() <-chan struct{} {
	return s.done
}

// Result returns the stored result. Only valid after Done is closed.
func (s *ResultSink) Result() engine.OperationResult {
	return s.result
}

// Completed reports whether any result has been stored.
func (s *ResultSink) Completed() bool {
	return s.state.Load() != 0
}
