// Package metrics provides Prometheus metrics for the marketplace API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatConnections tracks live chat channels by conversation kind
	ChatConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tradelink",
			Subsystem: "chat",
			Name:      "connections",
			Help:      "Number of live chat connections",
		},
		[]string{"kind"},
	)

	// ChatBroadcastsTotal counts broadcast calls that reached the local registry
	ChatBroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradelink",
			Subsystem: "chat",
			Name:      "broadcasts_total",
			Help:      "Total number of broadcasts delivered to the local registry",
		},
		[]string{"kind"},
	)

	// ChatPrunedTotal counts channels dropped after a failed send
	ChatPrunedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradelink",
			Subsystem: "chat",
			Name:      "pruned_total",
			Help:      "Total number of dead chat channels removed during broadcast",
		},
		[]string{"kind"},
	)

	// ChatMessagesTotal counts persisted chat messages by type
	ChatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradelink",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Total number of persisted chat messages",
		},
		[]string{"type"},
	)

	// WorkflowTransitionsTotal counts successful order/complaint transitions
	WorkflowTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradelink",
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "Total number of successful workflow transitions",
		},
		[]string{"entity", "new_status"},
	)

	// HTTPRequestDuration tracks inbound request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradelink",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status"},
	)
)
