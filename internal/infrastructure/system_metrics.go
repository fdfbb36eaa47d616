package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ProcessMetrics reports the calculator process's runtime state. The gauges
// are observed whenever the registry is gathered, so a metrics textfile
// always carries the figures as of the end of the run.
type ProcessMetrics struct {
	startTime    time.Time
	registration metric.Registration
}

// NewProcessMetrics registers the process gauges on meter
func NewProcessMetrics(meter metric.Meter, startTime time.Time) (*ProcessMetrics, error) {
	goroutines, err := meter.Int64ObservableGauge(
		"process_goroutines",
		metric.WithDescription("Number of live goroutines"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64ObservableGauge(
		"process_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	memSys, err := meter.Int64ObservableGauge(
		"process_memory_system_bytes",
		metric.WithDescription("Memory obtained from the OS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCycles, err := meter.Int64ObservableCounter(
		"process_gc_cycles",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	uptime, err := meter.Float64ObservableGauge(
		"process_uptime_seconds",
		metric.WithDescription("Seconds since the process started"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	pm := &ProcessMetrics{startTime: startTime}
	pm.registration, err = meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			o.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))
			o.ObserveInt64(heapAlloc, int64(m.HeapAlloc))
			o.ObserveInt64(memSys, int64(m.Sys))
			o.ObserveInt64(gcCycles, int64(m.NumGC))
			o.ObserveFloat64(uptime, time.Since(pm.startTime).Seconds())
			return nil
		},
		goroutines, heapAlloc, memSys, gcCycles, uptime,
	)
	if err != nil {
		return nil, err
	}
	return pm, nil
}

// Unregister stops observing the process gauges
func (pm *ProcessMetrics) Unregister() error {
	if pm == nil || pm.registration == nil {
		return nil
	}
	return pm.registration.Unregister()
}
