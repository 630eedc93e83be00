package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusforge/timetable-engine/internal/engine"
)

const namespace = "timetable_engine"

// Metrics bundles the Prometheus collectors emitted while driving runs,
// registered against a dedicated registry rather than the global default so
// multiple engine instances in one process never collide.
type Metrics struct {
	registry        *prometheus.Registry
	runsTotal       *prometheus.CounterVec
	generationGauge prometheus.Gauge
	bestFitnessGauge prometheus.Gauge
	hardViolationsGauge prometheus.Gauge
	runDuration     prometheus.Histogram
}

// NewMetrics constructs and registers the collector set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of evolutionary runs, labeled by termination reason.",
		}, []string{"termination"}),
		generationGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_generation",
			Help:      "Generation number of the most recently reported progress record.",
		}),
		bestFitnessGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_fitness",
			Help:      "Fitness score of the best chromosome as of the most recent progress record.",
		}),
		hardViolationsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_hard_violations",
			Help:      "Hard violation count of the best chromosome as of the most recent progress record.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of completed evolutionary runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}

	registry.MustRegister(m.runsTotal, m.generationGauge, m.bestFitnessGauge, m.hardViolationsGauge, m.runDuration)
	return m
}

// Handler exposes the registry on a bare net/http mux, independent of any
// HTTP request-triggering surface the engine itself does not provide.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveResult records a completed run's terminal state.
func (m *Metrics) ObserveResult(result engine.Result) {
	m.runsTotal.WithLabelValues(string(result.Termination)).Inc()
	m.runDuration.Observe(result.Duration.Seconds())
}

// ProgressSink wraps another ProgressSink and mirrors each record into the
// generation/fitness/violation gauges before delegating.
type ProgressSink struct {
	metrics *Metrics
	next    engine.ProgressSink
}

// NewProgressSink builds a metrics-observing decorator around next.
func NewProgressSink(m *Metrics, next engine.ProgressSink) ProgressSink {
	return ProgressSink{metrics: m, next: next}
}

// Notify implements engine.ProgressSink.
func (s ProgressSink) Notify(ctx context.Context, record engine.ProgressRecord) error {
	s.metrics.generationGauge.Set(float64(record.Generation))
	s.metrics.bestFitnessGauge.Set(record.BestFitness)
	s.metrics.hardViolationsGauge.Set(float64(record.BestHardViolations))
	if s.next == nil {
		return nil
	}
	return s.next.Notify(ctx, record)
}
