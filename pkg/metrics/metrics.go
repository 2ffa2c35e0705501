package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cmdstash_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// CommandSearches counts search requests and whether they produced results.
	CommandSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cmdstash_command_searches_total",
			Help: "Total number of command search requests",
		},
		[]string{"outcome"},
	)

	// ImportedCommands counts commands admitted and dropped by the bulk importer.
	ImportedCommands = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cmdstash_imported_commands_total",
			Help: "Total number of command rows processed by bulk import",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cmdstash_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
