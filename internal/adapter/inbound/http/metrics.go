package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway.
// Pass to components that need to record metrics.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	ActiveSessions     prometheus.Gauge
	StoreSelections    *prometheus.CounterVec
	DirectoryRefreshes *prometheus.CounterVec
	GraphQLQueries     *prometheus.CounterVec
	EventSubscribers   prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "woofront",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "status"}, // status=ok/error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "woofront",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		ActiveSessions: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "woofront",
				Name:      "active_sessions",
				Help:      "Number of live session scopes",
			},
		),
		StoreSelections: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "woofront",
				Name:      "store_selections_total",
				Help:      "Store selections by result",
			},
			[]string{"result"}, // result=ok/not_found/error
		),
		DirectoryRefreshes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "woofront",
				Name:      "directory_forced_refreshes_total",
				Help:      "Forced directory refresh requests by result",
			},
			[]string{"result"}, // result=refreshed/throttled/error
		),
		GraphQLQueries: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "woofront",
				Name:      "graphql_queries_total",
				Help:      "Store queries sent through session bindings by outcome",
			},
			[]string{"outcome"},
		),
		EventSubscribers: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "woofront",
				Name:      "event_subscribers",
				Help:      "Open websocket event streams",
			},
		),
	}
}
