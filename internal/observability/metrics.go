package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskibarqy/americano/internal/domain/americano"
	"github.com/riskibarqy/americano/internal/platform/cache"
	"github.com/riskibarqy/americano/internal/platform/resilience"
)

const metricsNamespace = "americano"

// Metrics owns a private Prometheus registry for schedule generation, caches and breakers.
type Metrics struct {
	registry    *prometheus.Registry
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	evaluations *prometheus.HistogramVec
	spread      *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "schedule",
			Name:      "generations_total",
			Help:      "Schedule engine runs by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "schedule",
			Name:      "generation_duration_seconds",
			Help:      "Wall time of one schedule engine run.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"operation"}),
		evaluations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "schedule",
			Name:      "evaluations",
			Help:      "Scoring calls made by one schedule engine run.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}, []string{"operation"}),
		spread: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "schedule",
			Name:      "games_spread",
			Help:      "Difference between the most and the fewest games played by one player.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		}, []string{"operation"}),
	}
	registry.MustRegister(m.runs, m.duration, m.evaluations, m.spread)
	return m
}

// ObserveGeneration records one engine run.
func (m *Metrics) ObserveGeneration(operation string, elapsed time.Duration, stats americano.Statistics, err error) {
	if err != nil {
		m.runs.WithLabelValues(operation, "error").Inc()
		return
	}
	m.runs.WithLabelValues(operation, "ok").Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
	m.evaluations.WithLabelValues(operation).Observe(float64(stats.Evaluations))
	m.spread.WithLabelValues(operation).Observe(float64(stats.MaxGames - stats.MinGames))
}

// RegisterCache exposes the counters of an in-process cache under the given name.
func (m *Metrics) RegisterCache(name string, stats func() cache.Stats) {
	labels := prometheus.Labels{"cache": name}
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "cache",
			Name:        "hits_total",
			Help:        "Cache lookups served from memory.",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "cache",
			Name:        "misses_total",
			Help:        "Cache lookups that fell through to the loader.",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Misses) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   "cache",
			Name:        "entries",
			Help:        "Entries currently held.",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Entries) }),
	)
}

// RegisterCircuitBreaker exposes the breaker state: 0 closed, 1 half-open, 2 open.
func (m *Metrics) RegisterCircuitBreaker(name string, breaker *resilience.CircuitBreaker) {
	if breaker == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Subsystem:   "circuit_breaker",
		Name:        "state",
		Help:        "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		ConstLabels: prometheus.Labels{"dependency": name},
	}, func() float64 { return breakerStateValue(breaker.State()) }))
}

func breakerStateValue(state resilience.CircuitState) float64 {
	switch state {
	case resilience.CircuitStateHalfOpen:
		return 1
	case resilience.CircuitStateOpen:
		return 2
	default:
		return 0
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
