// Package metrics provides Prometheus metrics for the rating service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Replay
	gamesRated        prometheus.Counter
	replayRuns        *prometheus.CounterVec
	replayDuration    prometheus.Histogram
	seasonTransitions prometheus.Counter
	replayWarnings    *prometheus.CounterVec
	teamsRated        prometheus.Gauge
	teamRating        *prometheus.GaugeVec

	// Storage and ingestion
	storeLatency  *prometheus.HistogramVec
	storeGames    prometheus.Gauge
	gamesImported prometheus.Counter
	gamesFetched  prometheus.Counter
	fetchErrors   prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nbaelo",
		subsystem:        "ratings",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.gamesRated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "games_rated_total",
		Help:        "Games that received ratings during a replay",
		ConstLabels: m.constLabels,
	})
	m.replayRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "replay_runs_total",
		Help:        "Replay runs by outcome (ok, partial, failed)",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})
	m.replayDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "replay_duration_milliseconds",
		Help:        "Wall time of a full replay in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
	m.seasonTransitions = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "season_transitions_total",
		Help:        "Season boundaries crossed with rating regression",
		ConstLabels: m.constLabels,
	})
	m.replayWarnings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "replay_warnings_total",
		Help:        "Replay warnings by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})
	m.teamsRated = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "teams",
		Help:        "Teams in the latest rating mapping",
		ConstLabels: m.constLabels,
	})
	m.teamRating = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "team_rating",
		Help:        "Latest rating per team",
		ConstLabels: m.constLabels,
	}, []string{"team"})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_latency_milliseconds",
		Help:        "Game store operation latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"op"})
	m.storeGames = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_games",
		Help:        "Games held in the store after the last save",
		ConstLabels: m.constLabels,
	})
	m.gamesImported = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "games_imported_total",
		Help:        "Games read from historical CSV",
		ConstLabels: m.constLabels,
	})
	m.gamesFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "games_fetched_total",
		Help:        "New games fetched from the scoreboard",
		ConstLabels: m.constLabels,
	})
	m.fetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fetch_errors_total",
		Help:        "Scoreboard fetches that failed",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "HTTP requests by endpoint, method and status",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_total",
		Help:        "Errors by component and type",
		ConstLabels: m.constLabels,
	}, []string{"component", "type"})
}

// RecordGamesRated adds n to the rated games counter.
func RecordGamesRated(n int) {
	globalManager.gamesRated.Add(float64(n))
}

// RecordReplayRun counts a replay with the given outcome.
func RecordReplayRun(outcome string) {
	globalManager.replayRuns.WithLabelValues(outcome).Inc()
}

// RecordReplayDuration records replay wall time in milliseconds.
func RecordReplayDuration(ms float64) {
	globalManager.replayDuration.Observe(ms)
}

// RecordSeasonTransitions adds n crossed boundaries.
func RecordSeasonTransitions(n int) {
	globalManager.seasonTransitions.Add(float64(n))
}

// RecordReplayWarning counts a warning of the given kind.
func RecordReplayWarning(kind string) {
	globalManager.replayWarnings.WithLabelValues(kind).Inc()
}

// UpdateTeamRatings publishes the latest mapping.
func UpdateTeamRatings(ratings map[string]float64) {
	globalManager.teamsRated.Set(float64(len(ratings)))
	for team, r := range ratings {
		globalManager.teamRating.WithLabelValues(team).Set(r)
	}
}

// RecordStoreLatency records a store operation latency in milliseconds.
func RecordStoreLatency(op string, ms float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(ms)
}

// UpdateStoreGames sets the number of stored games.
func UpdateStoreGames(n int) {
	globalManager.storeGames.Set(float64(n))
}

// RecordGamesImported adds n imported games.
func RecordGamesImported(n int) {
	globalManager.gamesImported.Add(float64(n))
}

// RecordGamesFetched adds n fetched games.
func RecordGamesFetched(n int) {
	globalManager.gamesFetched.Add(float64(n))
}

// RecordFetchError counts a failed scoreboard fetch.
func RecordFetchError() {
	globalManager.fetchErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
