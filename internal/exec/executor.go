// Package exec runs mutating operations under the engine's threading
// discipline: one logical writer, labeled transactional scopes, a timeout
// on the calling side, and an indexing gate in front of everything.
package exec

import (
	stderrors "errors"
	"time"

	"crb/internal/engine"
	"crb/internal/errors"
	"crb/internal/logging"
)

// DefaultTimeout bounds a mutation when the caller does not specify one.
const DefaultTimeout = 30 * time.Second

// Action is a unit of mutation work. It runs on the writer goroutine inside
// the transactional scope and returns the operation's result.
type Action func() (engine.OperationResult, error)

// Executor schedules mutations onto the arena's writer context.
type Executor struct {
	arena  *engine.Arena
	logger *logging.Logger
}

// NewExecutor creates an Executor over the given arena.
func NewExecutor(arena *engine.Arena, logger *logging.Logger) *Executor {
	return &Executor{arena: arena, logger: logger}
}

// Execute runs action on the writer context under commandLabel and blocks
// until it completes or timeout elapses (DefaultTimeout when zero).
//
// An error raised by the action yields a Failure result prefixed
// "Refactoring failed:"; a failure of the scheduling or transaction
// machinery yields a Failure prefixed "Execution failed:". Timeout is
// different: it returns a TimeoutError instead of a result, because the
// mutation may still be in flight on the writer context and the caller
// must not mistake that for a settled failure.
func (e *Executor) Execute(cb engine.Codebase, commandLabel string, timeout time.Duration, action Action) (engine.OperationResult, error) {
	if err := e.gate(cb); err != nil {
		return engine.OperationResult{}, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var result engine.OperationResult
	out, err := e.arena.Schedule(commandLabel, func() error {
		res, err := action()
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return failure(errors.InternalError, "Execution failed: "+err.Error()), nil
	}

	select {
	case outcome := <-out:
		return e.settle(commandLabel, result, outcome), nil
	case <-time.After(timeout):
		e.logger.Warn("Writer-context operation timed out", map[string]interface{}{
			"label":   commandLabel,
			"timeout": timeout.String(),
		})
		return engine.OperationResult{}, &errors.TimeoutError{Label: commandLabel, Timeout: timeout}
	}
}

// Body is a callback-style unit of work: it signals its outcome through the
// sink rather than a return value.
type Body func(sink *ResultSink)

// ExecuteWithCallback runs body on the writer context and waits for the
// first result signaled on the sink. A body that returns without signaling
// keeps the call blocked until the sink fires or the timeout elapses: the
// engine may complete the operation asynchronously.
func (e *Executor) ExecuteWithCallback(cb engine.Codebase, commandLabel string, timeout time.Duration, body Body) (engine.OperationResult, error) {
	if err := e.gate(cb); err != nil {
		return engine.OperationResult{}, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	sink := NewResultSink()
	out, err := e.arena.Schedule(commandLabel, func() error {
		body(sink)
		return nil
	})
	if err != nil {
		return failure(errors.InternalError, "Execution failed: "+err.Error()), nil
	}

	deadline := time.After(timeout)
	timeoutErr := &errors.TimeoutError{Label: commandLabel, Timeout: timeout}

	select {
	case <-sink.Done():
		return sink.Result(), nil
	case outcome := <-out:
		if outcome.ActionErr == nil && outcome.InfraErr == nil {
			// Body returned without signaling; the result may still arrive.
			select {
			case <-sink.Done():
				return sink.Result(), nil
			case <-deadline:
				return engine.OperationResult{}, timeoutErr
			}
		}
		if sink.Completed() {
			return sink.Result(), nil
		}
		return e.settle(commandLabel, engine.OperationResult{}, outcome), nil
	case <-deadline:
		return engine.OperationResult{}, timeoutErr
	}
}

// gate rejects work against an indexing codebase before anything reaches
// the writer context, so no backlog of doomed requests builds up there.
func (e *Executor) gate(cb engine.Codebase) error {
	if cb.Indexing() {
		return errors.Newf(errors.IndexingInProgress,
			"codebase %q is indexing; mutations are rejected until indexing completes", cb.Name())
	}
	return nil
}

// settle converts a write outcome into the final operation result.
func (e *Executor) settle(label string, result engine.OperationResult, outcome engine.WriteOutcome) engine.OperationResult {
	if outcome.InfraErr != nil {
		e.logger.Error("Writer-context machinery failed", map[string]interface{}{
			"label": label,
			"error": outcome.InfraErr.Error(),
		})
		return failure(errors.InternalError, "Execution failed: "+outcome.InfraErr.Error())
	}
	if outcome.ActionErr != nil {
		return failure(actionCode(outcome.ActionErr), "Refactoring failed: "+actionMessage(outcome.ActionErr))
	}
	return result
}

// actionCode preserves a categorized action error's kind; anything else is
// a RefactoringFailed.
func actionCode(err error) errors.ErrorCode {
	var be *errors.BridgeError
	if stderrors.As(err, &be) {
		return be.Code
	}
	return errors.RefactoringFailed
}

// actionMessage uses the categorized message when there is one, keeping
// raw engine text out of the boundary.
func actionMessage(err error) string {
	var be *errors.BridgeError
	if stderrors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}

func failure(code errors.ErrorCode, message string) engine.OperationResult {
	return engine.Failed(code, message)
}
