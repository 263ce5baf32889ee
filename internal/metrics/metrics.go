// Package metrics exposes Prometheus instrumentation for the hub.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveSessions tracks the number of live meeting sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meetsync_active_sessions",
		Help: "Number of live meeting sessions.",
	})

	// ActiveConnections tracks the number of attached client connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meetsync_active_connections",
		Help: "Number of attached WebSocket connections.",
	})

	// BroadcastsTotal counts broadcast invocations.
	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meetsync_broadcasts_total",
		Help: "Total number of session broadcasts.",
	})

	// DeliveriesTotal counts successful per-connection deliveries.
	DeliveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meetsync_deliveries_total",
		Help: "Total number of successful frame deliveries.",
	})

	// DeliveryFailuresTotal counts connections dropped during a broadcast.
	DeliveryFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meetsync_delivery_failures_total",
		Help: "Total number of connections dropped for failed delivery.",
	})

	// AnalysisRequestsTotal counts summarization service calls by kind and outcome.
	AnalysisRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meetsync_analysis_requests_total",
		Help: "Total number of summarization service calls.",
	}, []string{"kind", "outcome"})
)
