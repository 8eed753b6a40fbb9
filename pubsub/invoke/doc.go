// Package invoke executes subscriber callbacks with panic recovery and
// timing capture.
//
// The package exists so that callback execution carries no dependency on
// the bus itself: the dispatch loop hands a callback and a payload to Run
// and receives a Result describing what happened.
//
// # Panic Recovery
//
// A callback that panics never crashes the process. The panic value and a
// full stack trace are captured on the Result, and the caller decides how
// to surface them.
//
// # Usage
//
//	result := invoke.Run(ctx, callback, payload)
//	if result.Failed() {
//	    // route to an error sink; delivery to other subscribers continues
//	}
package invoke
