package runtime

import (
	"errors"
	"fmt"

	"github.com/vango-dev/mvu/pkg/vdom"
)

// Sentinel errors for dispatch cycle failures.
var (
	// ErrUnknownCommand is returned when an event id is not bound in the
	// registry. It is expected when an event races the removal of the
	// element that raised it; state and tree are unchanged.
	ErrUnknownCommand = errors.New("runtime: unknown command")

	// ErrDuplicateHandlerBinding is returned when a registry write would
	// rebind an existing id to a different command.
	ErrDuplicateHandlerBinding = errors.New("runtime: duplicate handler binding")

	// ErrExternalPrimitive is matched by *PrimitiveError.
	ErrExternalPrimitive = errors.New("runtime: external primitive failed")

	// ErrMalformedTree is returned when a view produces a tree the runtime
	// cannot interpret.
	ErrMalformedTree = vdom.ErrMalformedTree

	// ErrCycleInFlight is returned under ConcurrencyReject when a cycle is
	// already running.
	ErrCycleInFlight = errors.New("runtime: cycle in flight")

	// ErrNotMounted is returned when dispatching before Mount or Prerender.
	ErrNotMounted = errors.New("runtime: not mounted")

	// ErrCommandType is returned when a bound command is not of the
	// application's command type.
	ErrCommandType = errors.New("runtime: command has wrong type")

	// ErrPanic is returned when Update or View panics.
	ErrPanic = errors.New("runtime: panic")
)

// PrimitiveError reports a failed Document call.
type PrimitiveError struct {
	Primitive string // Document method name
	NodeID    string // Target node, empty for SetRootContent
	Err       error
}

// Error returns the error message.
func (e *PrimitiveError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("runtime: %s failed: %v", e.Primitive, e.Err)
	}
	return fmt.Sprintf("runtime: %s(%s) failed: %v", e.Primitive, e.NodeID, e.Err)
}

// Unwrap returns the underlying error.
func (e *PrimitiveError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExternalPrimitive.
func (e *PrimitiveError) Is(target error) bool {
	return target == ErrExternalPrimitive
}

// CycleError wraps an error with the dispatch step it occurred in.
type CycleError struct {
	EventID string
	Op      string // lookup, update, view, diff, apply, mount, resync
	Err     error
}

// Error returns the error message with cycle context.
func (e *CycleError) Error() string {
	if e.EventID == "" {
		return fmt.Sprintf("runtime: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("runtime: event %s: %s: %v", e.EventID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *CycleError) Unwrap() error {
	return e.Err
}

func cycleError(eventID, op string, err error) *CycleError {
	return &CycleError{EventID: eventID, Op: op, Err: err}
}

// panicError converts a recovered value into an error matching ErrPanic.
func panicError(where string, r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w in %s: %w", ErrPanic, where, err)
	}
	return fmt.Errorf("%w in %s: %v", ErrPanic, where, r)
}
