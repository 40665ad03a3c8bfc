package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/BlueDragon92003/stirling-engine/input"
	"github.com/BlueDragon92003/stirling-engine/status"
)

// Engine owns the tick scheduler, the input tracker and the update callback
// All methods must be called from the goroutine driving Run
type Engine struct {
	scheduler *TickScheduler
	tracker   *input.Tracker
	updater   Updater

	source TimeProvider
	clock  *PausableClock // Created by Run

	registry *status.Registry
	metrics  *loopMetrics
	logger   *log.Logger

	state LoopState
}

// Run drives the frame loop until the callback exits, the host terminates, the watchdog trips or the poller fails
//
// Per frame: poll, sample clock, advance scheduler (watchdog), apply input events,
// then one Update per elapsed tick. After ControlPause the next poll waits for an
// external event with the game clock paused, so idle time produces neither ticks
// nor watchdog breaches
func (e *Engine) Run(p Poller) (Report, error) {
	if p == nil {
		return Report{}, ErrMissingPoller
	}
	if e.state != StateUninitialized {
		return Report{}, ErrAlreadyRun
	}

	e.clock = NewPausableClock(e.source)
	start := e.clock.Now()
	e.scheduler.Start(start)
	e.metrics.start(start)
	e.state = StateRunning

	e.logger.Printf("engine: running, tick %v, watchdog %v", e.scheduler.TickDuration(), e.scheduler.Watchdog())

	report := Report{}
	mode := PollBusy

	for {
		frame, err := e.poll(p, mode)
		if err != nil {
			return e.finish(report, start, OutcomeNone), fmt.Errorf("engine: poll: %w", err)
		}
		report.Frames++

		// A wait ends the pause; the next callback decides whether to pause again
		if mode == PollWait {
			mode = PollBusy
			e.state = StateRunning
		}

		now := e.clock.Now()
		ticks, err := e.scheduler.Advance(now)
		e.metrics.frame(now, ticks)
		if err != nil {
			e.logger.Printf("engine: %v", err)
			return e.finish(report, start, OutcomeWatchdogTripped), err
		}

		e.tracker.Apply(frame.Events...)

		if frame.Terminate {
			e.logger.Printf("engine: termination requested by host")
			return e.finish(report, start, OutcomeClosed), nil
		}

		for i := 0; i < ticks; i++ {
			tick := e.scheduler.NextTick()
			e.metrics.tick(tick)
			report.Ticks++

			switch e.updater.Update(tick, e.tracker) {
			case ControlExit:
				return e.finish(report, start, OutcomeExited), nil
			case ControlPause:
				mode = PollWait
				e.state = StatePaused
			default:
				mode = PollBusy
				e.state = StateRunning
			}
		}
	}
}

// poll asks the host for the next frame, freezing game time while it may block
func (e *Engine) poll(p Poller, mode PollMode) (Frame, error) {
	if mode == PollWait {
		e.clock.Pause()
		e.metrics.setPaused(true)
		defer func() {
			e.clock.Resume()
			e.metrics.setPaused(false)
		}()
	}
	return p.Poll(mode)
}

func (e *Engine) finish(r Report, start time.Time, o Outcome) Report {
	e.state = StateExited
	e.metrics.finish(o)

	r.Outcome = o
	r.Elapsed = e.clock.Now().Sub(start)

	e.logger.Printf("engine: exited (%s) after %d ticks, %d frames", o, r.Ticks, r.Frames)
	return r
}

// State returns the loop lifecycle state
func (e *Engine) State() LoopState {
	return e.state
}

// Input returns a read-only view of button states
func (e *Engine) Input() input.View {
	return e.tracker
}

// Tick returns the number of ticks executed so far
func (e *Engine) Tick() uint64 {
	return e.scheduler.Tick()
}

// TickDuration returns the fixed tick length
func (e *Engine) TickDuration() time.Duration {
	return e.scheduler.TickDuration()
}

// Status returns the registry receiving loop metrics
func (e *Engine) Status() *status.Registry {
	return e.registry
}
