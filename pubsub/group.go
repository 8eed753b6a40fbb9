package pubsub

// group is a named set of subscribers sharing an activation flag.
// Deactivating a group suppresses delivery to its members without touching
// their registrations.
type group struct {
	name    GroupName
	active  bool
	members map[Handle]struct{}
}

// groupTable owns group records. It is not safe for concurrent use; the
// bus serializes access through its coordinator lock.
//
// Groups are created on first reference: by subscribe (created active) or
// by an activation toggle (created in the requested state). In strict mode
// toggles on unknown names fail instead.
type groupTable struct {
	groups      map[GroupName]*group
	defaultName GroupName
	strict      bool
}

func newGroupTable(defaultName GroupName, strict bool) *groupTable {
	t := &groupTable{
		groups:      make(map[GroupName]*group),
		defaultName: defaultName,
		strict:      strict,
	}
	t.groups[defaultName] = &group{
		name:    defaultName,
		active:  true,
		members: make(map[Handle]struct{}),
	}
	return t
}

// join adds a subscriber to a group, creating the group active if it has
// never been referenced.
func (t *groupTable) join(name GroupName, h Handle) {
	g, ok := t.groups[name]
	if !ok {
		g = &group{
			name:    name,
			active:  true,
			members: make(map[Handle]struct{}),
		}
		t.groups[name] = g
	}
	g.members[h] = struct{}{}
}

// leave removes a subscriber from a group. Groups are never auto-deleted;
// an emptied group keeps its activation state for future members.
func (t *groupTable) leave(name GroupName, h Handle) {
	if g, ok := t.groups[name]; ok {
		delete(g.members, h)
	}
}

// setActive toggles delivery eligibility for all current and future
// members of a group. The default group is always active.
func (t *groupTable) setActive(name GroupName, active bool) error {
	if name == t.defaultName && !active {
		return ErrDefaultGroup
	}

	g, ok := t.groups[name]
	if !ok {
		if t.strict {
			return ErrUnknownGroup
		}
		t.groups[name] = &group{
			name:    name,
			active:  active,
			members: make(map[Handle]struct{}),
		}
		return nil
	}

	g.active = active
	return nil
}

// isActive reports whether a group currently receives deliveries.
func (t *groupTable) isActive(name GroupName) bool {
	g, ok := t.groups[name]
	return ok && g.active
}

// reset drops all groups except the default, which is emptied and
// reactivated.
func (t *groupTable) reset() {
	t.groups = map[GroupName]*group{
		t.defaultName: {
			name:    t.defaultName,
			active:  true,
			members: make(map[Handle]struct{}),
		},
	}
}
