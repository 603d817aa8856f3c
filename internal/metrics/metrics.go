package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roulette_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roulette_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	AgentsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roulette_agents_registered_total",
			Help: "Total agents registered",
		},
	)

	MatchesMade = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roulette_matches_total",
			Help: "Total rooms created by matchmaking",
		},
		[]string{"queue"}, // "standard" or "elite"
	)

	MessagesPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roulette_messages_posted_total",
			Help: "Total messages posted",
		},
	)

	RoomsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roulette_rooms_ended_total",
			Help: "Total rooms ended",
		},
		[]string{"reason"}, // "left" or "timeout"
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roulette_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"scope"}, // "message" or "http"
	)

	EligibilityChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roulette_eligibility_checks_total",
			Help: "Total elite eligibility decisions",
		},
		[]string{"result"}, // "eligible" or "ineligible"
	)

	// State gauges
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "roulette_queue_depth",
			Help: "Agents currently waiting per queue",
		},
		[]string{"queue"},
	)

	ActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "roulette_active_rooms",
			Help: "Rooms currently active",
		},
	)
)
