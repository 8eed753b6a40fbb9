// Package pubsub provides an in-process publish/subscribe event dispatcher
// for latency-sensitive applications such as game loops.
//
// Publishing never delivers anything by itself: events accumulate in a
// priority-ordered queue until the application calls Dispatch, typically
// once per frame with a time budget. This gives the caller full control
// over when and for how long event delivery runs.
//
// # Architecture
//
// The bus is built from four cooperating pieces behind one coordinator
// lock:
//
//   - Event queue: a binary heap of pending events ordered by
//     (priority desc, sequence asc). Sequence numbers are strictly
//     increasing per bus, so the ordering is total.
//   - Subscriber registry: per-event-type lists of callbacks ordered by
//     (priority desc, subscribe order asc).
//   - Group table: named subscriber groups with an activation flag,
//     letting whole feature areas be muted without unsubscribing anyone.
//   - Dispatch loop: drains the queue under an optional time budget,
//     resolving each event's recipients at delivery time.
//
// # Priority Ordering
//
// Higher priority values dispatch first, for events and subscribers alike.
// Ties are broken by publish order (events) and subscribe order
// (subscribers), so delivery order is always deterministic. The valid
// priority domain is declared once at construction and is immutable; out
// of domain values are rejected with ErrInvalidPriority.
//
// # Groups
//
// Every subscriber belongs to exactly one group; the implicit default
// group is always active. Deactivating a group stops delivery to its
// members without removing them. Groups are created on first reference
// unless WithStrictGroups is set.
//
// # Dispatch Budget
//
//	bus.Dispatch(ctx)                                  // exhaustive
//	bus.Dispatch(ctx, pubsub.WithBudget(2*time.Millisecond))
//
// With a budget, the loop stops once the elapsed time reaches it, checked
// only at event boundaries. At least one event is always delivered when
// the queue is non-empty, even with a zero budget, so a small budget can
// never starve the queue. A single slow callback can overrun the budget;
// that is an accepted trade-off, not a bug.
//
// # Error Isolation
//
// A callback that returns an error or panics is reported to the configured
// ErrorSink and delivery continues with the remaining subscribers. Nothing
// a callback does can crash the dispatch loop.
//
// # Reentrancy
//
// The coordinator lock is released around every callback invocation, so
// callbacks may publish, subscribe, unsubscribe, toggle groups, or call
// Dispatch recursively. Recipients are snapshotted per event before
// invocation begins: mutations during callback execution affect only
// future events, never the delivery in progress.
//
// # Basic Usage
//
//	bus, err := pubsub.New(
//	    pubsub.WithDefaultPriority(pubsub.PriorityNormal),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	handle, _ := bus.SubscribeFunc("collision", func(ctx context.Context, payload any) error {
//	    hit := payload.(CollisionData)
//	    resolve(hit)
//	    return nil
//	}, pubsub.WithPriority(pubsub.PriorityHigh))
//	defer bus.Unsubscribe(handle)
//
//	bus.Publish("collision", CollisionData{A: player, B: wall})
//
//	// Once per frame:
//	summary := bus.Dispatch(ctx, pubsub.WithBudget(2*time.Millisecond))
//	if !summary.QueueEmpty {
//	    // carry over to the next frame
//	}
package pubsub
