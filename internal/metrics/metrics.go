package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persona_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "persona_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ContextDetectionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "persona_context_detection_duration_seconds",
			Help:    "Time spent detecting the context of one message.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	ContextMoodsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persona_context_moods_total",
			Help: "Detected moods, by mood.",
		},
		[]string{"mood"},
	)

	TurnsSavedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persona_turns_saved_total",
			Help: "Total number of conversation turns persisted.",
		},
		[]string{"role"},
	)

	TurnsCleanedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "persona_turns_cleaned_total",
			Help: "Total number of expired conversation turns deleted.",
		},
	)

	PersonaSelectionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "persona_selection_duration_seconds",
			Help:    "Time spent selecting a persona, including the profile load.",
			Buckets: prometheus.DefBuckets,
		},
	)

	ProfileCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persona_profile_cache_total",
			Help: "Profile cache lookups, by result (hit or miss).",
		},
		[]string{"result"},
	)

	TraitParseFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persona_trait_parse_failures_total",
			Help: "Stored trait maps that could not be decoded and were replaced by an empty map.",
		},
		[]string{"layer"},
	)

	MaintenanceRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persona_maintenance_runs_total",
			Help: "Maintenance passes, by outcome (ok, error, skipped).",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ContextDetectionDuration,
		ContextMoodsTotal,
		TurnsSavedTotal,
		TurnsCleanedTotal,
		PersonaSelectionDuration,
		ProfileCacheTotal,
		TraitParseFailuresTotal,
		MaintenanceRunsTotal,
	)
}
