package pubsub

import (
	"errors"
	"fmt"
)

// Sentinel errors for the bus.
var (
	// ErrInvalidPriority is returned when a priority value falls outside
	// the configured domain.
	ErrInvalidPriority = errors.New("priority outside the configured domain")

	// ErrUnknownSubscriber is returned when unsubscribing a handle that is
	// not currently registered (including a second unsubscribe).
	ErrUnknownSubscriber = errors.New("unknown subscriber handle")

	// ErrUnknownGroup is returned by group toggles in strict mode when the
	// named group has never been referenced.
	ErrUnknownGroup = errors.New("unknown subscriber group")

	// ErrDefaultGroup is returned when attempting to deactivate the
	// default group, which is always active.
	ErrDefaultGroup = errors.New("the default group cannot be deactivated")

	// ErrNilCallback is returned when a nil callback is provided.
	ErrNilCallback = errors.New("callback cannot be nil")

	// ErrCallbackPanic matches CallbackError values produced by a panic.
	ErrCallbackPanic = errors.New("callback panicked")
)

// CallbackError describes a single subscriber callback failure during
// dispatch. It is routed to the configured ErrorSink; it is never returned
// from Dispatch.
type CallbackError struct {
	// Handle identifies the subscriber whose callback failed.
	Handle Handle

	// EventType is the type of the event being delivered.
	EventType EventType

	// Group is the failing subscriber's group.
	Group GroupName

	// Err is the error returned by the callback, if it returned one.
	Err error

	// Panicked is true if the callback panicked instead of returning.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace captured at the point of panic.
	PanicStack []byte
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	if e.Panicked {
		return fmt.Sprintf("callback panic for subscriber %s on %q: %v", e.Handle, e.EventType, e.PanicValue)
	}
	return fmt.Sprintf("callback error for subscriber %s on %q: %v", e.Handle, e.EventType, e.Err)
}

// Unwrap returns the underlying callback error, if any.
func (e *CallbackError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match panicking CallbackErrors with ErrCallbackPanic.
func (e *CallbackError) Is(target error) bool {
	return target == ErrCallbackPanic && e.Panicked
}
