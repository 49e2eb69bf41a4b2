// Package metrics exposes planner activity as prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cronkit"

// Metrics groups the collectors updated by the planner. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	rebuilds          *prometheus.CounterVec
	rebuildDuration   prometheus.Histogram
	scheduledRuns     prometheus.Gauge
	invalidSchedules  prometheus.Counter
	exhaustedSearches prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "rebuilds_total",
			Help:      "Index rebuilds by result.",
		}, []string{"result"}),
		rebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "rebuild_duration_seconds",
			Help:      "Time spent computing occurrences for one index rebuild.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		scheduledRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "scheduled_runs",
			Help:      "Runs currently held in the index.",
		}),
		invalidSchedules: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "invalid_schedules_total",
			Help:      "Jobs skipped because their schedule did not parse.",
		}),
		exhaustedSearches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "exhausted_searches_total",
			Help:      "Jobs whose occurrence search found nothing within the search horizon.",
		}),
	}

	reg.MustRegister(
		m.rebuilds,
		m.rebuildDuration,
		m.scheduledRuns,
		m.invalidSchedules,
		m.exhaustedSearches,
	)
	return m
}

// ObserveRebuild records one finished rebuild.
func (m *Metrics) ObserveRebuild(d time.Duration, runs int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.rebuilds.WithLabelValues("error").Inc()
		return
	}
	m.rebuilds.WithLabelValues("ok").Inc()
	m.rebuildDuration.Observe(d.Seconds())
	m.scheduledRuns.Set(float64(runs))
}

// InvalidSchedule counts a job skipped for an unparseable schedule.
func (m *Metrics) InvalidSchedule() {
	if m == nil {
		return
	}
	m.invalidSchedules.Inc()
}

// ExhaustedSearch counts a job with no occurrence inside the horizon.
func (m *Metrics) ExhaustedSearch() {
	if m == nil {
		return
	}
	m.exhaustedSearches.Inc()
}

// Handler serves the collectors in g on /metrics and a liveness probe
// on /healthz.
func Handler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}
