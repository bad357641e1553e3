package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all prometheus metrics for the analytics service.
// uses a custom registry to avoid polluting the global namespace.
type Metrics struct {
	Registry *prometheus.Registry

	// http_request_duration_seconds - histogram for api latency
	HTTPRequestDuration *prometheus.HistogramVec

	// tgstats_leaderboard_duration_seconds - histogram for full-chat rankings
	LeaderboardDuration prometheus.Histogram

	// tgstats_scores_computed_total - counter for per-user score computations
	ScoresComputedTotal *prometheus.CounterVec

	// tgstats_refresh_cycles_total - counter for background refresh cycles
	RefreshCyclesTotal *prometheus.CounterVec
}

// New creates and registers all prometheus metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	// add standard go runtime and process collectors
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		LeaderboardDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tgstats_leaderboard_duration_seconds",
			Help:    "Duration of full-chat leaderboard computations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}),

		ScoresComputedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgstats_scores_computed_total",
				Help: "Total number of per-user engagement scores computed",
			},
			[]string{"chat_id"},
		),

		RefreshCyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgstats_refresh_cycles_total",
				Help: "Total number of background leaderboard refresh cycles",
			},
			[]string{"outcome"},
		),
	}

	// register all custom metrics
	reg.MustRegister(
		m.HTTPRequestDuration,
		m.LeaderboardDuration,
		m.ScoresComputedTotal,
		m.RefreshCyclesTotal,
	)

	return m
}

// RecordHTTPRequest records the duration of an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, durationSeconds float64) {
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
}

// RecordLeaderboardComputation records one full-chat ranking.
// satisfies the application layer's DurationRecorder.
func (m *Metrics) RecordLeaderboardComputation(chatID string, candidates int, durationSeconds float64) {
	m.LeaderboardDuration.Observe(durationSeconds)
	m.ScoresComputedTotal.WithLabelValues(chatID).Add(float64(candidates))
}

// RecordRefreshCycle records the outcome of one background refresh cycle.
func (m *Metrics) RecordRefreshCycle(outcome string) {
	m.RefreshCyclesTotal.WithLabelValues(outcome).Inc()
}
