package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_http_requests_total",
		Help: "Total HTTP requests processed, labeled by route and status code",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orders_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "route"})

	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Order creation attempts by outcome (session_opened, compensated, error)",
	}, []string{"outcome"})

	OrdersReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_reconciled_total",
		Help: "Successful reconciliations by resulting local status",
	}, []string{"status"})

	GatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orders_checkout_request_duration_seconds",
		Help:    "Latency of calls to the checkout provider",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"operation", "outcome"})

	TokenFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_checkout_token_fetches_total",
		Help: "Access token requests sent to the checkout provider",
	}, []string{"outcome"})
)

const (
	OutcomeSessionOpened = "session_opened"
	OutcomeCompensated   = "compensated"
	OutcomeError         = "error"
	OutcomeSuccess       = "success"
)
