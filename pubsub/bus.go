package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wkmanire/publishsubscribe/pubsub/invoke"
)

// Bus is an in-process publish/subscribe event dispatcher. It owns the
// event queue, the subscriber registry, and the group table, and drains
// the queue synchronously on the caller's goroutine when Dispatch is
// called.
//
// All methods are safe for concurrent use. Queue and registry access is
// serialized on a single coordinator lock; the lock is released for the
// duration of every callback invocation, so callbacks may legally call
// Publish, Subscribe, Unsubscribe, or even Dispatch reentrantly.
type Bus struct {
	mu     sync.Mutex
	queue  eventQueue
	reg    *registry
	groups *groupTable
	seq    uint64

	config busConfig
	sink   ErrorSink

	// Stats
	published      atomic.Uint64
	delivered      atomic.Uint64
	cleared        atomic.Uint64
	invoked        atomic.Uint64
	callbackErrors atomic.Uint64
	callbackPanics atomic.Uint64
}

// New creates a bus with the given options. The priority domain, default
// priority, and default group are immutable after construction.
func New(opts ...Option) (*Bus, error) {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	b := &Bus{
		reg:    newRegistry(),
		groups: newGroupTable(config.defaultGroup, config.strictGroups),
		config: config,
	}

	b.sink = config.sink
	if b.sink == nil {
		b.sink = b.logFailure
	}

	return b, nil
}

// PublishOption configures a single Publish call.
type PublishOption func(*publishOpts)

type publishOpts struct {
	priority    Priority
	hasPriority bool
}

// AtPriority publishes the event at the given priority instead of the
// bus default.
func AtPriority(p Priority) PublishOption {
	return func(o *publishOpts) {
		o.priority = p
		o.hasPriority = true
	}
}

// Publish enqueues an event for a future Dispatch call. It never triggers
// delivery itself. The returned sequence number is unique per bus and
// strictly increasing; it breaks ties between equal-priority events.
func (b *Bus) Publish(typ EventType, payload any, opts ...PublishOption) (uint64, error) {
	var o publishOpts
	for _, opt := range opts {
		opt(&o)
	}

	priority := b.config.defaultPriority
	if o.hasPriority {
		priority = o.priority
	}
	if !b.config.inDomain(priority) {
		return 0, ErrInvalidPriority
	}

	b.mu.Lock()
	b.seq++
	seq := b.seq
	b.queue.push(&event{
		typ:      typ,
		priority: priority,
		seq:      seq,
		payload:  payload,
	})
	b.mu.Unlock()

	b.published.Add(1)
	b.config.logger.Debug().
		Str("event_type", string(typ)).
		Int("priority", int(priority)).
		Uint64("seq", seq).
		Msg("publish")

	return seq, nil
}

// SubscribeOption configures a single Subscribe call.
type SubscribeOption func(*subscribeOpts)

type subscribeOpts struct {
	priority    Priority
	hasPriority bool
	group       GroupName
}

// WithPriority sets the subscriber's notification priority. Higher
// priority subscribers are notified first.
func WithPriority(p Priority) SubscribeOption {
	return func(o *subscribeOpts) {
		o.priority = p
		o.hasPriority = true
	}
}

// WithGroup places the subscriber in a named group instead of the default
// group. A subscriber belongs to exactly one group. An empty name is
// ignored: the subscriber joins the default group.
func WithGroup(name GroupName) SubscribeOption {
	return func(o *subscribeOpts) {
		o.group = name
	}
}

// Subscribe registers a callback for an event type and returns an opaque
// handle for Unsubscribe. Subscribers of the same event type are notified
// in (priority desc, subscribe order asc) order.
func (b *Bus) Subscribe(typ EventType, cb Callback, opts ...SubscribeOption) (Handle, error) {
	if cb == nil {
		return "", ErrNilCallback
	}

	var o subscribeOpts
	for _, opt := range opts {
		opt(&o)
	}

	priority := b.config.defaultPriority
	if o.hasPriority {
		priority = o.priority
	}
	if !b.config.inDomain(priority) {
		return "", ErrInvalidPriority
	}

	grp := b.config.defaultGroup
	if o.group != "" {
		grp = o.group
	}

	b.mu.Lock()
	sub := b.reg.add(typ, cb, priority, grp)
	b.groups.join(grp, sub.handle)
	b.mu.Unlock()

	b.config.logger.Debug().
		Str("event_type", string(typ)).
		Int("priority", int(priority)).
		Str("group", string(grp)).
		Str("handle", string(sub.handle)).
		Msg("subscribe")

	return sub.handle, nil
}

// SubscribeFunc is a convenience method for subscribing with a function
// callback.
func (b *Bus) SubscribeFunc(typ EventType, fn CallbackFunc, opts ...SubscribeOption) (Handle, error) {
	if fn == nil {
		return "", ErrNilCallback
	}
	return b.Subscribe(typ, fn, opts...)
}

// Unsubscribe removes a subscriber. A second Unsubscribe on the same
// handle reports ErrUnknownSubscriber and leaves all state unchanged.
func (b *Bus) Unsubscribe(h Handle) error {
	b.mu.Lock()
	sub, ok := b.reg.remove(h)
	if ok {
		b.groups.leave(sub.group, h)
	}
	b.mu.Unlock()

	if !ok {
		return ErrUnknownSubscriber
	}

	b.config.logger.Debug().
		Str("event_type", string(sub.typ)).
		Str("handle", string(h)).
		Msg("unsubscribe")

	return nil
}

// ActivateGroup resumes delivery to all current and future members of a
// group. Outside strict mode an unreferenced group is created active.
func (b *Bus) ActivateGroup(name GroupName) error {
	return b.setGroupActive(name, true)
}

// DeactivateGroup suppresses delivery to all current and future members of
// a group without touching their registrations. Outside strict mode an
// unreferenced group is created inactive. The default group is always
// active and cannot be deactivated.
func (b *Bus) DeactivateGroup(name GroupName) error {
	return b.setGroupActive(name, false)
}

func (b *Bus) setGroupActive(name GroupName, active bool) error {
	b.mu.Lock()
	err := b.groups.setActive(name, active)
	b.mu.Unlock()

	if err != nil {
		return err
	}

	b.config.logger.Debug().
		Str("group", string(name)).
		Bool("active", active).
		Msg("group toggle")

	return nil
}

// DispatchOption configures a single Dispatch call.
type DispatchOption func(*dispatchOpts)

type dispatchOpts struct {
	budget    time.Duration
	hasBudget bool
	only      []EventType
}

// WithBudget bounds the dispatch loop. The budget is checked only at event
// boundaries: at least one event is always delivered when the queue is
// non-empty, and a single slow callback can overrun the budget.
func WithBudget(d time.Duration) DispatchOption {
	return func(o *dispatchOpts) {
		o.budget = d
		o.hasBudget = true
	}
}

// WithOnly restricts dispatch to the given event types. Non-matching
// events stay queued.
func WithOnly(types ...EventType) DispatchOption {
	return func(o *dispatchOpts) {
		o.only = append(o.only, types...)
	}
}

// Dispatch drains pending events on the calling goroutine, invoking each
// event's subscribers in notification order. Without a budget it is
// exhaustive: it loops until no matching event remains, including events
// published by callbacks during the call.
//
// Events are consumed in (priority desc, sequence asc) order. An event
// with no active recipients is consumed silently and still counts as
// delivered. Callback failures go to the error sink and never abort
// delivery to the remaining subscribers.
//
// The context is passed through to callbacks; it does not bound the loop.
// The only bound on a Dispatch call is its own budget.
func (b *Bus) Dispatch(ctx context.Context, opts ...DispatchOption) DispatchSummary {
	var o dispatchOpts
	for _, opt := range opts {
		opt(&o)
	}
	filter := newEventFilter(o.only)

	start := b.config.clock.Now()
	delivered := 0

	for {
		b.mu.Lock()
		ev := b.queue.popNext(filter)
		if ev == nil {
			b.mu.Unlock()
			break
		}
		recipients := b.reg.recipients(ev.typ, b.groups)
		b.mu.Unlock()

		// Payload ownership transfers transiently to each callback for the
		// duration of the call. The lock stays released so callbacks may
		// publish, subscribe, or dispatch reentrantly.
		for _, sub := range recipients {
			result := invoke.Run(ctx, sub.callback, ev.payload)
			b.invoked.Add(1)
			if result.Failed() {
				b.reportFailure(sub, ev, result)
			}
		}

		delivered++
		b.delivered.Add(1)

		if o.hasBudget && b.config.clock.Now().Sub(start) >= o.budget {
			break
		}
	}

	b.mu.Lock()
	empty := !b.queue.hasMatch(filter)
	b.mu.Unlock()

	elapsed := b.config.clock.Now().Sub(start)
	b.config.logger.Debug().
		Int("delivered", delivered).
		Bool("queue_empty", empty).
		Dur("elapsed", elapsed).
		Msg("dispatch")

	return DispatchSummary{
		Delivered:  delivered,
		QueueEmpty: empty,
		Elapsed:    elapsed,
	}
}

// reportFailure wraps a callback failure and routes it to the sink.
func (b *Bus) reportFailure(sub *subscriber, ev *event, result invoke.Result) {
	if result.Panicked {
		b.callbackPanics.Add(1)
	} else {
		b.callbackErrors.Add(1)
	}

	cerr := &CallbackError{
		Handle:     sub.handle,
		EventType:  ev.typ,
		Group:      sub.group,
		Err:        result.Err,
		Panicked:   result.Panicked,
		PanicValue: result.PanicValue,
		PanicStack: result.PanicStack,
	}

	// Protect the dispatch loop from a misbehaving sink.
	defer func() {
		_ = recover()
	}()
	b.sink(cerr)
}

// logFailure is the default error sink.
func (b *Bus) logFailure(cerr *CallbackError) {
	b.config.logger.Error().
		Err(cerr).
		Str("event_type", string(cerr.EventType)).
		Str("handle", string(cerr.Handle)).
		Bool("panicked", cerr.Panicked).
		Msg("callback failure")
}

// Clear discards pending events without dispatching them. With no
// arguments the whole queue is emptied; otherwise only events of the given
// types are removed. Used for scene transitions.
func (b *Bus) Clear(types ...EventType) {
	b.mu.Lock()
	removed := b.queue.clear(newEventFilter(types))
	b.mu.Unlock()

	b.cleared.Add(uint64(removed))
	b.config.logger.Debug().
		Int("removed", removed).
		Msg("clear")
}

// Reset restores the bus to its initial state: the queue is emptied, all
// subscribers are removed, and all groups except the default are dropped.
// Counters and the sequence number are preserved.
func (b *Bus) Reset() {
	b.mu.Lock()
	removed := b.queue.clear(nil)
	b.reg.clear()
	b.groups.reset()
	b.mu.Unlock()

	b.cleared.Add(uint64(removed))
	b.config.logger.Debug().Msg("reset")
}

// Pending returns the current queue depth.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.len()
}

// PendingOf returns the number of pending events of the given type.
func (b *Bus) PendingOf(typ EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.lenOf(typ)
}

// Subscribers returns the current number of registered subscribers.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reg.count()
}

// SubscribersOf returns the number of subscribers for an event type.
func (b *Bus) SubscribersOf(typ EventType) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reg.countOf(typ)
}

// Stats returns current bus counters.
func (b *Bus) Stats() Stats {
	b.mu.Lock()
	pending := b.queue.len()
	subscribers := b.reg.count()
	b.mu.Unlock()

	return Stats{
		EventsPublished:  b.published.Load(),
		EventsDelivered:  b.delivered.Load(),
		EventsCleared:    b.cleared.Load(),
		CallbacksInvoked: b.invoked.Load(),
		CallbackErrors:   b.callbackErrors.Load(),
		CallbackPanics:   b.callbackPanics.Load(),
		PendingEvents:    pending,
		Subscribers:      subscribers,
	}
}
