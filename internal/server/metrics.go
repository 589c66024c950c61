package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/pocket/internal/analytics"
)

// Metrics exposes request counters and gauges derived from the latest habit
// snapshot. Each Server owns its own registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	mutations       *prometheus.CounterVec
	habits          prometheus.Gauge
	completedToday  prometheus.Gauge
	activeStreaks   prometheus.Gauge
	consistency     prometheus.Gauge
	completionTotal prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pocket",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pocket",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pocket",
			Name:      "habit_mutations_total",
			Help:      "Habit writes by operation and result.",
		}, []string{"op", "result"}),
		habits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pocket",
			Name:      "habits",
			Help:      "Number of tracked habits.",
		}),
		completedToday: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pocket",
			Name:      "habits_completed_today",
			Help:      "Habits completed on the current day.",
		}),
		activeStreaks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pocket",
			Name:      "active_streaks",
			Help:      "Habits with a streak above zero.",
		}),
		consistency: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pocket",
			Name:      "consistency_score",
			Help:      "Consistency score over the ratio window, 0-100.",
		}),
		completionTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pocket",
			Name:      "completions",
			Help:      "Completed days across all habits.",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.latency, m.mutations,
		m.habits, m.completedToday, m.activeStreaks, m.consistency, m.completionTotal,
	)
	return m
}

// Observe publishes the figures of a freshly built report.
func (m *Metrics) Observe(r analytics.Report) {
	m.habits.Set(float64(r.Summary.TotalHabits))
	m.completedToday.Set(float64(r.Summary.CompletedToday))
	m.activeStreaks.Set(float64(r.Summary.ActiveStreaks))
	m.completionTotal.Set(float64(r.Summary.TotalCompletions))
	m.consistency.Set(float64(r.Score))
}

// Mutation counts one write attempt.
func (m *Metrics) Mutation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mutations.WithLabelValues(op, result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Instrument counts requests by their chi route pattern, not the raw path.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
