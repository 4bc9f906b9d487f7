package middleware

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/josh-kwaku/checkout-orders/internal/metrics"
)

// Metrics records request counts and latency per route template. It must be
// installed with Router.Use so the matched route is known.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		timer := prometheus.NewTimer(metrics.HTTPRequestDuration.WithLabelValues(r.Method, route))
		rec := recorderFor(w)
		next.ServeHTTP(rec, r)
		timer.ObserveDuration()

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
	})
}
