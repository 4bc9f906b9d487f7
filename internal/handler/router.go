package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers every route. Middleware is applied by the caller.
func NewRouter(orders *OrderHandler, health *HealthHandler, spec []byte) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(MethodNotAllowed)

	r.HandleFunc("/health", health.Liveness).Methods(http.MethodGet)
	r.HandleFunc("/ping/", health.Ping).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/docs", ServeDocs()).Methods(http.MethodGet)
	r.HandleFunc("/docs/openapi.yaml", ServeSpec(spec)).Methods(http.MethodGet)

	r.HandleFunc("/orders", orders.Create).Methods(http.MethodPost)
	r.HandleFunc("/orders", orders.List).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", orders.Get).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}/payment-redirect", orders.PaymentRedirect).Methods(http.MethodGet)

	return r
}
