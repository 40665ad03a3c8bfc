package engine

import (
	"time"

	"github.com/BlueDragon92003/stirling-engine/input"
)

// ControlFlow is the update callback's decision for the next poll
type ControlFlow uint8

const (
	ControlRun   ControlFlow = iota // Keep polling immediately
	ControlPause                    // Wait for the next external event before polling again
	ControlExit                     // Stop the loop
)

// String returns the control flow name
func (c ControlFlow) String() string {
	switch c {
	case ControlRun:
		return "Run"
	case ControlPause:
		return "Pause"
	case ControlExit:
		return "Exit"
	default:
		return "Unknown"
	}
}

// Updater is the application logic invoked once per tick
type Updater interface {
	Update(tick uint64, in input.View) ControlFlow
}

// UpdateFunc adapts a function to Updater
type UpdateFunc func(tick uint64, in input.View) ControlFlow

// Update calls f(tick, in)
func (f UpdateFunc) Update(tick uint64, in input.View) ControlFlow {
	return f(tick, in)
}

// LoopState is the run loop lifecycle
type LoopState uint8

const (
	StateUninitialized LoopState = iota
	StateRunning
	StatePaused
	StateExited
)

// String returns the state name
func (s LoopState) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateExited:
		return "Exited"
	default:
		return "Unknown"
	}
}

// Outcome is why a run ended
type Outcome uint8

const (
	OutcomeNone            Outcome = iota // Run ended on a poller error
	OutcomeExited                         // Update callback returned ControlExit
	OutcomeClosed                         // Host requested termination
	OutcomeWatchdogTripped                // Frame gap exceeded the watchdog limit
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "None"
	case OutcomeExited:
		return "Exited"
	case OutcomeClosed:
		return "Closed"
	case OutcomeWatchdogTripped:
		return "WatchdogTripped"
	default:
		return "Unknown"
	}
}

// Report summarises a finished run
type Report struct {
	Outcome Outcome
	Ticks   uint64        // Update callbacks invoked
	Frames  uint64        // Frames polled
	Elapsed time.Duration // Game time between start and exit, pauses excluded
}

// PollMode tells the poller whether it may block
type PollMode uint8

const (
	PollBusy PollMode = iota // Return promptly, possibly with an empty frame
	PollWait                 // Block until at least one event or a termination request
)

// String returns the poll mode name
func (m PollMode) String() string {
	if m == PollWait {
		return "Wait"
	}
	return "Busy"
}

// Frame is one batch delivered by the host per poll
type Frame struct {
	Events    []input.Event
	Terminate bool // Host close request, equivalent to ControlExit at the next opportunity
}

// Poller is the host event-loop capability driving the run loop
type Poller interface {
	Poll(mode PollMode) (Frame, error)
}
