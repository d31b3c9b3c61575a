// Package metrics defines the Prometheus collectors shared across the
// backend. All collectors register on the default registry and are served
// from the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncPasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_sync_passes_total",
			Help: "Inventory synchronization passes by result",
		},
		[]string{"result"},
	)

	SyncPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pulse_sync_pass_duration_seconds",
			Help:    "Duration of completed inventory synchronization passes",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	TokensSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_tokens_skipped_total",
			Help: "Tokens excluded from a pass by reason",
		},
		[]string{"reason"},
	)

	GatewayAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_gateway_attempts_total",
			Help: "Metadata gateway fetch attempts by outcome",
		},
		[]string{"outcome"},
	)

	PurchaseAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_purchase_attempts_total",
			Help: "Purchase attempts by terminal outcome",
		},
		[]string{"outcome"},
	)

	ConnectionStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_connection_status",
			Help: "Connection status (0 initializing, 1 degraded, 2 live)",
		},
	)

	LatestBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_latest_block",
			Help: "Latest block number observed from the node",
		},
	)
)
