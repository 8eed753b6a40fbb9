package pubsub

import (
	"sort"

	"github.com/google/uuid"
)

// subscriber is a registered callback for one event type.
// Ordering among subscribers of the same type is (priority desc,
// registration order asc), which is stable and deterministic.
type subscriber struct {
	handle   Handle
	typ      EventType
	priority Priority
	group    GroupName
	callback Callback
	order    uint64
}

// registry exclusively owns subscriber records. It is not safe for
// concurrent use; the bus serializes access through its coordinator lock.
type registry struct {
	byHandle map[Handle]*subscriber
	byType   map[EventType][]*subscriber
	order    uint64
}

func newRegistry() *registry {
	return &registry{
		byHandle: make(map[Handle]*subscriber),
		byType:   make(map[EventType][]*subscriber),
	}
}

// add registers a subscriber and returns its handle.
func (r *registry) add(typ EventType, cb Callback, priority Priority, grp GroupName) *subscriber {
	r.order++
	sub := &subscriber{
		handle:   Handle(uuid.NewString()),
		typ:      typ,
		priority: priority,
		group:    grp,
		callback: cb,
		order:    r.order,
	}

	subs := append(r.byType[typ], sub)
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].priority != subs[j].priority {
			return subs[i].priority > subs[j].priority
		}
		return subs[i].order < subs[j].order
	})
	r.byType[typ] = subs
	r.byHandle[sub.handle] = sub

	return sub
}

// remove deletes a subscriber by handle.
func (r *registry) remove(h Handle) (*subscriber, bool) {
	sub, ok := r.byHandle[h]
	if !ok {
		return nil, false
	}

	subs := r.byType[sub.typ]
	for i, s := range subs {
		if s.handle == h {
			r.byType[sub.typ] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(r.byType[sub.typ]) == 0 {
		delete(r.byType, sub.typ)
	}
	delete(r.byHandle, h)

	return sub, true
}

// recipients returns a snapshot of the subscribers for an event type whose
// group is active at resolution time, in notification order. The returned
// slice is a copy: registry mutations during callback execution never
// affect a delivery already in progress.
func (r *registry) recipients(typ EventType, groups *groupTable) []*subscriber {
	subs := r.byType[typ]
	if len(subs) == 0 {
		return nil
	}

	result := make([]*subscriber, 0, len(subs))
	for _, sub := range subs {
		if groups.isActive(sub.group) {
			result = append(result, sub)
		}
	}
	return result
}

// count returns the total number of registered subscribers.
func (r *registry) count() int {
	return len(r.byHandle)
}

// countOf returns the number of subscribers for an event type.
func (r *registry) countOf(typ EventType) int {
	return len(r.byType[typ])
}

// clear removes all subscribers.
func (r *registry) clear() {
	r.byHandle = make(map[Handle]*subscriber)
	r.byType = make(map[EventType][]*subscriber)
}
