package invoke

import (
	"context"
	"runtime/debug"
	"time"
)

// Callback is the interface for subscriber callbacks.
// This mirrors the pubsub.Callback interface to avoid circular imports.
type Callback interface {
	Invoke(ctx context.Context, payload any) error
}

// Result represents the outcome of a single callback invocation.
type Result struct {
	// Err is the error returned by the callback, if any.
	Err error

	// Panicked is true if the callback panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace captured at the point of panic.
	PanicStack []byte

	// Duration is how long the callback took to execute.
	Duration time.Duration
}

// Failed returns true if the callback returned an error or panicked.
func (r Result) Failed() bool {
	return r.Err != nil || r.Panicked
}

// Run executes a callback with the given payload and returns the result.
// It recovers from panics and captures timing information. The context is
// passed through to the callback unchanged; Run itself never blocks on it.
func Run(ctx context.Context, cb Callback, payload any) (result Result) {
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = debug.Stack()
		}
	}()

	result.Err = cb.Invoke(ctx, payload)
	return result
}
