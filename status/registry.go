package status

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

// Metric keys published by the run loop
const (
	KeyTicks            = "engine.ticks"
	KeyFrames           = "engine.frames"
	KeyWatchdogBreaches = "engine.watchdog_breaches"
	KeyPaused           = "engine.paused"
	KeyTPSActual        = "engine.tps_actual"
	KeyOutcome          = "engine.outcome"
)

// Registry is the central metrics facade
// Writers cache pointers once; the loop then stores to atomics without locking
type Registry struct {
	Bools   *MetricMap[atomic.Bool]
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:   NewMetricMap[atomic.Bool](),
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Lines renders every metric as "key=value", grouped by type and sorted by key
func (r *Registry) Lines() []string {
	lines := make([]string, 0, r.TotalCount())
	r.Bools.Range(func(key string, v *atomic.Bool) {
		lines = append(lines, key+"="+strconv.FormatBool(v.Load()))
	})
	r.Ints.Range(func(key string, v *atomic.Int64) {
		lines = append(lines, key+"="+strconv.FormatInt(v.Load(), 10))
	})
	r.Floats.Range(func(key string, v *AtomicFloat) {
		lines = append(lines, fmt.Sprintf("%s=%.2f", key, v.Get()))
	})
	r.Strings.Range(func(key string, v *AtomicString) {
		lines = append(lines, key+"="+v.Load())
	})
	return lines
}
