// Package metrics exposes Prometheus instrumentation for the scan loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder registers and updates the service metrics. A nil Recorder is a
// no-op, so callers never need to guard their instrumentation.
type Recorder struct {
	cyclesTotal    prometheus.Counter
	cycleErrors    prometheus.Counter
	signalsTotal   *prometheus.CounterVec
	feedErrors     *prometheus.CounterVec
	notifyFailures prometheus.Counter
	cycleDuration  prometheus.Histogram
	pairsScanned   prometheus.Gauge
}

// New creates a recorder registered against the default registry. Call it
// once per process.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "idxradar_cycles_total",
			Help: "Total number of completed scan cycles",
		}),
		cycleErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "idxradar_cycle_errors_total",
			Help: "Total number of scan cycles that failed",
		}),
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idxradar_signals_total",
				Help: "Total number of dispatched signals",
			},
			[]string{"mode"},
		),
		feedErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "idxradar_feed_errors_total",
				Help: "Total number of failed market data fetches",
			},
			[]string{"op"},
		),
		notifyFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "idxradar_notify_failures_total",
			Help: "Total number of failed outbound notifications",
		}),
		cycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "idxradar_cycle_duration_seconds",
			Help:    "Duration of scan cycles in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		pairsScanned: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "idxradar_pairs_scanned",
			Help: "Number of instruments processed in the last cycle",
		}),
	}
}

// RecordCycle records one completed cycle and its duration.
func (r *Recorder) RecordCycle(seconds float64) {
	if r == nil {
		return
	}
	r.cyclesTotal.Inc()
	r.cycleDuration.Observe(seconds)
}

// RecordCycleError records a failed cycle.
func (r *Recorder) RecordCycleError() {
	if r == nil {
		return
	}
	r.cycleErrors.Inc()
}

// RecordSignal records a dispatched signal by mode.
func (r *Recorder) RecordSignal(mode string) {
	if r == nil {
		return
	}
	r.signalsTotal.WithLabelValues(mode).Inc()
}

// RecordFeedError records a failed fetch by operation name.
func (r *Recorder) RecordFeedError(op string) {
	if r == nil {
		return
	}
	r.feedErrors.WithLabelValues(op).Inc()
}

// RecordNotifyFailure records a failed outbound notification.
func (r *Recorder) RecordNotifyFailure() {
	if r == nil {
		return
	}
	r.notifyFailures.Inc()
}

// RecordPairsScanned records how many instruments the last cycle processed.
func (r *Recorder) RecordPairsScanned(n int) {
	if r == nil {
		return
	}
	r.pairsScanned.Set(float64(n))
}
