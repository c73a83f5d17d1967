package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	httpRequestsTotal       *prometheus.CounterVec
	httpLatencySeconds      *prometheus.HistogramVec
	httpErrorsTotal         *prometheus.CounterVec
	realtimeSubscriptions   prometheus.Gauge
	realtimeEventsPublished *prometheus.CounterVec
	realtimeEventsDropped   prometheus.Counter
	chatMessagesSent        *prometheus.CounterVec
	sessionFanoutInserts    prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "berea_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "berea_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "berea_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		realtimeSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "berea_realtime_subscriptions_active",
			Help: "Number of active realtime topic subscriptions.",
		})

		realtimeEventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "berea_realtime_events_published_total",
			Help: "Total number of realtime events published, by event type.",
		}, []string{"event"})

		realtimeEventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "berea_realtime_events_dropped_total",
			Help: "Total number of realtime events dropped for slow subscribers.",
		})

		chatMessagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "berea_chat_messages_sent_total",
			Help: "Total number of chat messages persisted, by scope.",
		}, []string{"scope"})

		sessionFanoutInserts = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "berea_session_fanout_inserts_total",
			Help: "Total number of participant rows created by series fan-out.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			realtimeSubscriptions,
			realtimeEventsPublished,
			realtimeEventsDropped,
			chatMessagesSent,
			sessionFanoutInserts,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// RealtimeSubscriptionsActive exposes the gauge of open topic subscriptions.
func RealtimeSubscriptionsActive() prometheus.Gauge {
	RegisterMetrics()
	return realtimeSubscriptions
}

// RealtimeEventsPublished exposes the counter of published realtime events.
func RealtimeEventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return realtimeEventsPublished
}

// RealtimeEventsDropped exposes the counter of dropped realtime events.
func RealtimeEventsDropped() prometheus.Counter {
	RegisterMetrics()
	return realtimeEventsDropped
}

// ChatMessagesSent exposes the counter of persisted chat messages.
func ChatMessagesSent() *prometheus.CounterVec {
	RegisterMetrics()
	return chatMessagesSent
}

// SessionFanoutInserts exposes the counter of fan-out participant inserts.
func SessionFanoutInserts() prometheus.Counter {
	RegisterMetrics()
	return sessionFanoutInserts
}
