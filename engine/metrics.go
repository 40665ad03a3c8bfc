package engine

import (
	"sync/atomic"
	"time"

	"github.com/BlueDragon92003/stirling-engine/status"
)

// rateWindow is the game-time span over which the actual tick rate is measured
const rateWindow = time.Second

// loopMetrics caches registry pointers so the frame loop never takes the registry lock
type loopMetrics struct {
	ticks     *atomic.Int64
	frames    *atomic.Int64
	breaches  *atomic.Int64
	paused    *atomic.Bool
	tpsActual *status.AtomicFloat
	outcome   *status.AtomicString

	// Actual rate measurement
	windowStart time.Time
	windowTicks int
}

func newLoopMetrics(reg *status.Registry) *loopMetrics {
	return &loopMetrics{
		ticks:     reg.Ints.Get(status.KeyTicks),
		frames:    reg.Ints.Get(status.KeyFrames),
		breaches:  reg.Ints.Get(status.KeyWatchdogBreaches),
		paused:    reg.Bools.Get(status.KeyPaused),
		tpsActual: reg.Floats.Get(status.KeyTPSActual),
		outcome:   reg.Strings.Get(status.KeyOutcome),
	}
}

// start resets the rate window at the first clock sample
func (m *loopMetrics) start(now time.Time) {
	m.windowStart = now
	m.windowTicks = 0
	m.paused.Store(false)
	m.outcome.Store(OutcomeNone.String())
}

// frame records one polled frame and the ticks it produced
func (m *loopMetrics) frame(now time.Time, ticks int) {
	m.frames.Add(1)
	m.windowTicks += ticks

	span := now.Sub(m.windowStart)
	if span >= rateWindow {
		m.tpsActual.Set(float64(m.windowTicks) / span.Seconds())
		m.windowStart = now
		m.windowTicks = 0
	}
}

func (m *loopMetrics) tick(n uint64) {
	m.ticks.Store(int64(n))
}

func (m *loopMetrics) setPaused(p bool) {
	m.paused.Store(p)
}

func (m *loopMetrics) finish(o Outcome) {
	if o == OutcomeWatchdogTripped {
		m.breaches.Add(1)
	}
	m.paused.Store(false)
	m.outcome.Store(o.String())
}
