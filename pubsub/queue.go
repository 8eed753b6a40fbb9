package pubsub

import "container/heap"

// event is a queued publication. Events are immutable once queued.
// Identity is (typ, seq); ordering is (priority desc, seq asc), which is
// total because sequence numbers never repeat.
type event struct {
	typ      EventType
	priority Priority
	seq      uint64
	payload  any
}

// eventHeap implements heap.Interface over pending events.
type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return ev
}

// eventFilter restricts dispatch and clear operations to a set of event
// types. An empty filter matches everything.
type eventFilter map[EventType]struct{}

func newEventFilter(types []EventType) eventFilter {
	if len(types) == 0 {
		return nil
	}
	f := make(eventFilter, len(types))
	for _, t := range types {
		f[t] = struct{}{}
	}
	return f
}

func (f eventFilter) matches(t EventType) bool {
	if len(f) == 0 {
		return true
	}
	_, ok := f[t]
	return ok
}

// eventQueue owns pending events. It is not safe for concurrent use; the
// bus serializes access through its coordinator lock.
type eventQueue struct {
	events eventHeap
}

// push inserts an event in O(log n).
func (q *eventQueue) push(ev *event) {
	heap.Push(&q.events, ev)
}

// popNext removes and returns the lowest-order pending event matching the
// filter, or nil if none matches. Non-matching events popped along the way
// are re-inserted before returning: the coordinator lock is released
// between events, and anything held outside the heap would be invisible
// to reentrant Publish, Clear, Pending, and Dispatch calls.
func (q *eventQueue) popNext(filter eventFilter) *event {
	var stash []*event
	var found *event

	for q.events.Len() > 0 {
		ev := heap.Pop(&q.events).(*event)
		if filter.matches(ev.typ) {
			found = ev
			break
		}
		stash = append(stash, ev)
	}

	for _, ev := range stash {
		heap.Push(&q.events, ev)
	}
	return found
}

// hasMatch reports whether any pending event matches the filter.
func (q *eventQueue) hasMatch(filter eventFilter) bool {
	if len(filter) == 0 {
		return q.events.Len() > 0
	}
	for _, ev := range q.events {
		if filter.matches(ev.typ) {
			return true
		}
	}
	return false
}

// clear discards all matching pending events without dispatch and returns
// the number removed.
func (q *eventQueue) clear(filter eventFilter) int {
	if len(filter) == 0 {
		removed := q.events.Len()
		q.events = nil
		return removed
	}

	kept := q.events[:0]
	removed := 0
	for _, ev := range q.events {
		if filter.matches(ev.typ) {
			removed++
			continue
		}
		kept = append(kept, ev)
	}
	for i := len(kept); i < len(q.events); i++ {
		q.events[i] = nil
	}
	q.events = kept
	heap.Init(&q.events)
	return removed
}

// len returns the number of pending events.
func (q *eventQueue) len() int {
	return q.events.Len()
}

// lenOf returns the number of pending events of the given type.
func (q *eventQueue) lenOf(t EventType) int {
	count := 0
	for _, ev := range q.events {
		if ev.typ == t {
			count++
		}
	}
	return count
}
