package engine

import (
	"errors"
	"fmt"
	"time"
)

// Build and run errors
var (
	ErrMissingTPS            = errors.New("engine: ticks per second not set")
	ErrMissingWatchdogTime   = errors.New("engine: watchdog time not set")
	ErrMissingUpdateCallback = errors.New("engine: update callback not set")
	ErrInvalidTPS            = errors.New("engine: ticks per second must be positive")
	ErrInvalidWatchdogTime   = errors.New("engine: watchdog time must be positive")
	ErrMissingPoller         = errors.New("engine: poller is nil")
	ErrAlreadyRun            = errors.New("engine: run loop already started")
	ErrWatchdogExceeded      = errors.New("engine: watchdog exceeded")
)

// WatchdogError reports an inter-frame gap longer than the configured limit
type WatchdogError struct {
	Elapsed time.Duration
	Limit   time.Duration
}

func (e *WatchdogError) Error() string {
	return fmt.Sprintf("engine: watchdog exceeded: frame gap %v > limit %v", e.Elapsed, e.Limit)
}

// Is matches ErrWatchdogExceeded
func (e *WatchdogError) Is(target error) bool {
	return target == ErrWatchdogExceeded
}
