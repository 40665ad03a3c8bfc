package input

import "slices"

// View is read-only access to button states, handed to update callbacks
type View interface {
	// State returns the current state of id, Open(0) if never seen
	State(id ButtonIdentity) ButtonState
	// ActiveButtons returns identities currently Pressed or Held
	ActiveButtons() []ButtonIdentity
}

// Tracker owns one ButtonState per control ever touched
// Entries are created lazily on first event and never removed
// Not safe for concurrent use; the run loop is its only writer
type Tracker struct {
	states map[ButtonIdentity]ButtonState
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		states: make(map[ButtonIdentity]ButtonState),
	}
}

// OnEvent advances the state of id by one press or release and returns the new state
func (t *Tracker) OnEvent(id ButtonIdentity, pressed bool) ButtonState {
	next := Next(t.states[id], pressed)
	t.states[id] = next
	return next
}

// Apply feeds events in order
func (t *Tracker) Apply(events ...Event) {
	for _, ev := range events {
		t.OnEvent(ev.Button, ev.Pressed)
	}
}

// State returns the current state of id
// Missing entries read as the zero ButtonState, which is Open(0)
func (t *Tracker) State(id ButtonIdentity) ButtonState {
	return t.states[id]
}

// ActiveButtons returns identities in Pressed or Held, sorted by device, kind, code
func (t *Tracker) ActiveButtons() []ButtonIdentity {
	var active []ButtonIdentity
	for id, s := range t.states {
		if s.IsDown() {
			active = append(active, id)
		}
	}
	slices.SortFunc(active, ButtonIdentity.Compare)
	return active
}

// Len returns the number of distinct controls ever touched
func (t *Tracker) Len() int {
	return len(t.states)
}
