package engine

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/BlueDragon92003/stirling-engine/input"
	"github.com/BlueDragon92003/stirling-engine/status"
)

// Builder collects engine configuration
// Tick rate, watchdog time and update callback have no defaults and must be set explicitly
type Builder struct {
	tps         int
	tpsSet      bool
	watchdog    time.Duration
	watchdogSet bool
	updater     Updater

	timeProvider TimeProvider
	registry     *status.Registry
	logger       *log.Logger
}

// NewBuilder returns an empty builder
func NewBuilder() *Builder {
	return &Builder{}
}

// SetTPS sets the number of simulation ticks per second
func (b *Builder) SetTPS(tps int) *Builder {
	b.tps = tps
	b.tpsSet = true
	return b
}

// SetWatchdogTime sets the largest tolerated gap between two frame polls
func (b *Builder) SetWatchdogTime(d time.Duration) *Builder {
	b.watchdog = d
	b.watchdogSet = true
	return b
}

// SetUpdate sets the per-tick application logic
func (b *Builder) SetUpdate(u Updater) *Builder {
	b.updater = u
	return b
}

// SetUpdateFunc sets the per-tick application logic from a function
func (b *Builder) SetUpdateFunc(fn func(tick uint64, in input.View) ControlFlow) *Builder {
	if fn == nil {
		b.updater = nil
		return b
	}
	b.updater = UpdateFunc(fn)
	return b
}

// SetTimeProvider replaces the monotonic wall clock, mainly for tests
func (b *Builder) SetTimeProvider(tp TimeProvider) *Builder {
	b.timeProvider = tp
	return b
}

// SetStatus publishes loop metrics into reg instead of a private registry
func (b *Builder) SetStatus(reg *status.Registry) *Builder {
	b.registry = reg
	return b
}

// SetLogger replaces log.Default() for lifecycle messages
func (b *Builder) SetLogger(l *log.Logger) *Builder {
	b.logger = l
	return b
}

// Build validates the configuration and creates an engine
// Every missing option is reported; errors.Is matches each of ErrMissingTPS,
// ErrMissingWatchdogTime and ErrMissingUpdateCallback independently
// No clock is sampled until Run
func (b *Builder) Build() (*Engine, error) {
	var errs []error

	if !b.tpsSet {
		errs = append(errs, ErrMissingTPS)
	} else if b.tps <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidTPS, b.tps))
	}

	if !b.watchdogSet {
		errs = append(errs, ErrMissingWatchdogTime)
	} else if b.watchdog <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %v", ErrInvalidWatchdogTime, b.watchdog))
	}

	if b.updater == nil {
		errs = append(errs, ErrMissingUpdateCallback)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	scheduler, err := NewTickScheduler(b.tps, b.watchdog)
	if err != nil {
		return nil, err
	}

	tp := b.timeProvider
	if tp == nil {
		tp = NewMonotonicTimeProvider()
	}
	reg := b.registry
	if reg == nil {
		reg = status.NewRegistry()
	}
	logger := b.logger
	if logger == nil {
		logger = log.Default()
	}

	return &Engine{
		scheduler: scheduler,
		tracker:   input.NewTracker(),
		updater:   b.updater,
		source:    tp,
		registry:  reg,
		metrics:   newLoopMetrics(reg),
		logger:    logger,
	}, nil
}
