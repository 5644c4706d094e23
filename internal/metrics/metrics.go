// Package metrics exposes Prometheus instrumentation for the planner.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pipe_cutter"

// Recorder receives planner events.
type Recorder interface {
	PlanCompleted(policy string, bars int, waste float64, elapsed time.Duration)
	PlanFailed(reason string)
}

// Metrics holds the collectors registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	plans    *prometheus.CounterVec
	failures *prometheus.CounterVec
	bars     prometheus.Histogram
	waste    prometheus.Histogram
	duration prometheus.Histogram
}

// New creates and registers the planner collectors plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Completed cutting plans by placement policy.",
		}, []string{"policy"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_failures_total",
			Help:      "Rejected planning requests by reason.",
		}, []string{"reason"}),
		bars: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_bars",
			Help:      "Stock bars consumed per plan.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		waste: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_waste_length",
			Help:      "Total waste length per plan.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "Time spent normalising and packing one plan.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}

	m.registry.MustRegister(
		m.plans, m.failures, m.bars, m.waste, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// PlanCompleted records a successful plan.
func (m *Metrics) PlanCompleted(policy string, bars int, waste float64, elapsed time.Duration) {
	m.plans.WithLabelValues(policy).Inc()
	m.bars.Observe(float64(bars))
	m.waste.Observe(waste)
	m.duration.Observe(elapsed.Seconds())
}

// PlanFailed records a rejected request.
func (m *Metrics) PlanFailed(reason string) {
	m.failures.WithLabelValues(reason).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Nop discards all events.
type Nop struct{}

func (Nop) PlanCompleted(string, int, float64, time.Duration) {}
func (Nop) PlanFailed(string)                                 {}
