package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatapp_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatapp_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Matchmaking metrics
	MatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatapp_random_matches_total",
			Help: "Random chat sessions created",
		},
		[]string{"kind"}, // "human" or "bot"
	)

	SessionsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatapp_random_sessions_ended_total",
			Help: "Random chat sessions ended",
		},
		[]string{"reason"}, // "skip" or "disconnect"
	)

	WaitingUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatapp_random_waiting_users",
			Help: "Users currently waiting for a match",
		},
	)

	ActiveSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chatapp_random_active_sessions",
			Help: "Live random chat sessions",
		},
		[]string{"kind"},
	)

	MessagesRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatapp_random_messages_total",
			Help: "Messages sent in random chat",
		},
		[]string{"kind"},
	)

	// Bot metrics
	BotReplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatapp_bot_replies_total",
			Help: "Bot replies by source",
		},
		[]string{"source"}, // "ai", "fallback", "disabled"
	)

	BotBackendLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatapp_bot_backend_latency_seconds",
			Help:    "External bot backend latency",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10},
		},
	)

	// Transport metrics
	WebsocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatapp_websocket_connections",
			Help: "Open websocket connections",
		},
	)
)
