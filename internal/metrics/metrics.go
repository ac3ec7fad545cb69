// Package metrics holds the Prometheus collectors shared by the ledger, the alert
// engine and the HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation results.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultMissing = "not_found"
	ResultAborted = "aborted"
	ResultError   = "error"
)

var (
	// LedgerOperations counts ledger mutations by operation and outcome.
	LedgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	// LedgerRetries counts atomic units re-run after a conflict.
	LedgerRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_transaction_retries_total",
			Help: "Atomic ledger units retried after a conflicting write",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// AlertsActive is the number of alerts from the latest derivation, per severity.
	AlertsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "alerts_active",
			Help: "Alerts produced by the latest derivation, by severity",
		},
		[]string{"severity"},
	)
)
