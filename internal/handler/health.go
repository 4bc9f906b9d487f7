package handler

import (
	"context"
	"net/http"
	"time"
)

type paymentCounter interface {
	Count(ctx context.Context) (int64, error)
}

type HealthHandler struct {
	payments paymentCounter
}

func NewHealthHandler(payments paymentCounter) *HealthHandler {
	return &HealthHandler{payments: payments}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ping answers only after a query against the payments table succeeds.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	if _, err := h.payments.Count(r.Context()); err != nil {
		RespondDomainError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"ping": "pong"})
}
