package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by extractor (user|microservice)
	// and result (success|absent|invalid|expired).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dpweb_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"extractor", "result"},
	)

	// TokensIssued counts issued bearer tokens by type.
	TokensIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dpweb_tokens_issued_total",
			Help: "Total number of issued user tokens",
		},
		[]string{"type"},
	)

	// TokensRevoked counts tokens removed after being found expired (source=request|sweep).
	TokensRevoked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dpweb_tokens_revoked_total",
			Help: "Total number of expired tokens removed from storage",
		},
		[]string{"source"},
	)

	// InvitesClaimed counts invite claims by outcome (success|not_found|conflict).
	InvitesClaimed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dpweb_invites_claimed_total",
			Help: "Total number of invite claim attempts",
		},
		[]string{"result"},
	)

	// MaintenanceRuns counts background job runs by job and result (success|failure).
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dpweb_maintenance_runs_total",
			Help: "Total number of maintenance job runs",
		},
		[]string{"job", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dpweb_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
