package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/checkout-orders/internal/domain"
	"github.com/josh-kwaku/checkout-orders/internal/logging"
)

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, ErrorResponse{
		Error: APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

// RespondDomainError maps an error from the service layer onto a response
// and logs it. It is the only place service errors are logged.
func RespondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.FromContext(r.Context())

	var (
		appErr *AppError
		gwErr  *domain.GatewayError
	)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		log.Info("order not found", "error", err)
		appErr = ErrOrderNotFound
	case errors.Is(err, domain.ErrInvalidState):
		log.Info("order has no payment session", "error", err)
		appErr = ErrNoPaymentSession
	case errors.As(err, &gwErr):
		log.Warn("checkout provider error", "error", err, "provider_status", gwErr.StatusCode)
		appErr = ErrGateway
	default:
		log.Error("request failed", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, nil)
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	RespondAppError(w, ErrRouteNotFound, nil)
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	RespondAppError(w, ErrMethodNotAllowed, nil)
}
