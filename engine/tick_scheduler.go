package engine

import (
	"fmt"
	"time"
)

// TickScheduler converts elapsed wall-clock time into whole fixed-length ticks
// A frame gap beyond the watchdog limit is reported instead of being converted into a tick backlog
type TickScheduler struct {
	// Tick configuration
	tickDuration time.Duration
	watchdog     time.Duration

	// Frame bookkeeping
	previous    time.Time
	started     bool
	accumulated time.Duration // Always in [0, tickDuration) after Advance

	// Ticks handed out by NextTick since start
	tick uint64
}

// NewTickScheduler creates a scheduler running tps ticks per second
// Returns ErrInvalidTPS or ErrInvalidWatchdogTime for non-positive values
func NewTickScheduler(tps int, watchdog time.Duration) (*TickScheduler, error) {
	if tps <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTPS, tps)
	}
	if watchdog <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidWatchdogTime, watchdog)
	}

	tickDuration := time.Second / time.Duration(tps)
	if tickDuration <= 0 {
		return nil, fmt.Errorf("%w: %d exceeds clock resolution", ErrInvalidTPS, tps)
	}

	return &TickScheduler{
		tickDuration: tickDuration,
		watchdog:     watchdog,
	}, nil
}

// Start seeds the previous sample so the next Advance(now) sees zero elapsed time
func (s *TickScheduler) Start(now time.Time) {
	s.previous = now
	s.started = true
}

// Advance accounts for the time since the previous sample and returns the number of ticks to run
// On a watchdog breach it returns 0 and a *WatchdogError; the accumulator is left untouched
// The first call without Start behaves as if Start(now) had been called
func (s *TickScheduler) Advance(now time.Time) (int, error) {
	if !s.started {
		s.Start(now)
	}

	elapsed := now.Sub(s.previous)
	s.previous = now

	// Backwards samples are treated as no time passing
	if elapsed < 0 {
		elapsed = 0
	}

	if elapsed > s.watchdog {
		return 0, &WatchdogError{Elapsed: elapsed, Limit: s.watchdog}
	}

	s.accumulated += elapsed
	ticks := s.accumulated / s.tickDuration
	s.accumulated -= ticks * s.tickDuration

	return int(ticks), nil
}

// NextTick increments the tick counter and returns the new value
func (s *TickScheduler) NextTick() uint64 {
	s.tick++
	return s.tick
}

// Tick returns the number of ticks handed out so far
func (s *TickScheduler) Tick() uint64 {
	return s.tick
}

// TickDuration returns the fixed length of one tick
func (s *TickScheduler) TickDuration() time.Duration {
	return s.tickDuration
}

// Watchdog returns the maximum tolerated gap between two samples
func (s *TickScheduler) Watchdog() time.Duration {
	return s.watchdog
}

// Accumulated returns elapsed time not yet consumed as whole ticks
func (s *TickScheduler) Accumulated() time.Duration {
	return s.accumulated
}
