package pubsub

import (
	"context"
	"time"
)

// EventType identifies a kind of event (e.g., "collision", "input.key").
// The embedding application declares its own values.
type EventType string

// GroupName identifies a subscriber group.
type GroupName string

// DefaultGroup is the implicit group subscribers join when none is given.
// It is always active and cannot be deactivated.
const DefaultGroup GroupName = "default"

// Priority determines dispatch order for events and notification order for
// subscribers. Higher values dispatch first.
type Priority int

// Named priority levels. Any value inside the configured domain is valid;
// these are convenient defaults spanning the default domain.
const (
	// PriorityLow is for bookkeeping work that can wait a frame.
	PriorityLow Priority = 0

	// PriorityNormal is the default priority.
	PriorityNormal Priority = 100

	// PriorityHigh is for gameplay-relevant events.
	PriorityHigh Priority = 200

	// PriorityCritical is for events that must run before anything else.
	PriorityCritical Priority = 300
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p >= PriorityCritical:
		return "critical"
	case p >= PriorityHigh:
		return "high"
	case p >= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Handle is an opaque identifier for a registered subscriber.
// It is returned by Subscribe and consumed by Unsubscribe.
type Handle string

// Callback is the interface for subscriber callbacks.
type Callback interface {
	// Invoke processes one event payload.
	// The payload parameter is type-erased; callbacks should type-assert.
	Invoke(ctx context.Context, payload any) error
}

// CallbackFunc is a function adapter for Callback.
type CallbackFunc func(ctx context.Context, payload any) error

// Invoke implements the Callback interface.
func (f CallbackFunc) Invoke(ctx context.Context, payload any) error {
	return f(ctx, payload)
}

// Clock supplies the monotonic time measurements used for budget
// enforcement. It is injectable so budget behavior can be tested
// deterministically.
type Clock interface {
	Now() time.Time
}

// ClockFunc is a function adapter for Clock.
type ClockFunc func() time.Time

// Now implements the Clock interface.
func (f ClockFunc) Now() time.Time {
	return f()
}

// systemClock is the default Clock backed by time.Now.
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// ErrorSink receives per-subscriber callback failures during dispatch.
// A failure never aborts delivery to the remaining subscribers.
type ErrorSink func(err *CallbackError)

// DispatchSummary describes the outcome of a single Dispatch call.
type DispatchSummary struct {
	// Delivered is the number of events consumed from the queue, including
	// events that had no active recipients.
	Delivered int

	// QueueEmpty is true if no pending events matching the dispatch filter
	// remain after the call.
	QueueEmpty bool

	// Elapsed is the total time spent in the dispatch loop.
	Elapsed time.Duration
}

// Stats contains bus counters accumulated since construction (or the last
// Reset).
type Stats struct {
	// EventsPublished is the total number of events accepted by Publish.
	EventsPublished uint64

	// EventsDelivered is the total number of events consumed by Dispatch.
	EventsDelivered uint64

	// EventsCleared is the number of events discarded by Clear or Reset.
	EventsCleared uint64

	// CallbacksInvoked is the total number of callback invocations.
	CallbacksInvoked uint64

	// CallbackErrors is the number of callbacks that returned errors.
	CallbackErrors uint64

	// CallbackPanics is the number of callbacks that panicked.
	CallbackPanics uint64

	// PendingEvents is the current queue depth.
	PendingEvents int

	// Subscribers is the current number of registered subscribers.
	Subscribers int
}
