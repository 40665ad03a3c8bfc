package input

import (
	"fmt"
	"math"
)

// Phase is the edge-aware category of a button
type Phase uint8

const (
	PhaseOpen     Phase = iota // Up; zero value so an untouched button reads as Open(0)
	PhasePressed               // Went down on the latest event
	PhaseHeld                  // Down across repeated press events
	PhaseReleased              // Went up on the latest event
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "Open"
	case PhasePressed:
		return "Pressed"
	case PhaseHeld:
		return "Held"
	case PhaseReleased:
		return "Released"
	default:
		return "Unknown"
	}
}

// ButtonState is a phase annotated with a tick count
//
//   - Pressed(n): went down, after being up for n ticks
//   - Held(n): down for n consecutive ticks, n >= 1
//   - Released(n): went up, after being held for n ticks; Released(0) is a one-tick press
//   - Open(n): up for n ticks since the last release; Open(0) has never been pressed
type ButtonState struct {
	Phase Phase
	Ticks uint32
}

// Pressed returns a Pressed(n) state
func Pressed(n uint32) ButtonState { return ButtonState{Phase: PhasePressed, Ticks: n} }

// Held returns a Held(n) state
func Held(n uint32) ButtonState { return ButtonState{Phase: PhaseHeld, Ticks: n} }

// Released returns a Released(n) state
func Released(n uint32) ButtonState { return ButtonState{Phase: PhaseReleased, Ticks: n} }

// Open returns an Open(n) state
func Open(n uint32) ButtonState { return ButtonState{Phase: PhaseOpen, Ticks: n} }

// IsDown reports whether the button is physically down
func (s ButtonState) IsDown() bool {
	return s.Phase == PhasePressed || s.Phase == PhaseHeld
}

// String formats the state as Phase(n)
func (s ButtonState) String() string {
	return fmt.Sprintf("%s(%d)", s.Phase, s.Ticks)
}

// Next applies one raw press/release event to a state
//
//	current      | press     | release
//	Pressed(_)   | Held(1)   | Released(0)
//	Held(n)      | Held(n+1) | Released(n)
//	Open(n)      | Pressed(n)| Open(n+1)
//	Released(_)  | Pressed(0)| Open(1)
func Next(s ButtonState, pressed bool) ButtonState {
	if pressed {
		switch s.Phase {
		case PhasePressed:
			return Held(1)
		case PhaseHeld:
			return Held(inc(s.Ticks))
		case PhaseReleased:
			return Pressed(0)
		default:
			return Pressed(s.Ticks)
		}
	}

	switch s.Phase {
	case PhasePressed:
		return Released(0)
	case PhaseHeld:
		return Released(s.Ticks)
	case PhaseReleased:
		return Open(1)
	default:
		return Open(inc(s.Ticks))
	}
}

// inc is a saturating increment
func inc(n uint32) uint32 {
	if n == math.MaxUint32 {
		return n
	}
	return n + 1
}
