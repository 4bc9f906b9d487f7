package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrInvalidOrderID   = &AppError{http.StatusBadRequest, "INVALID_ORDER_ID", "Order id must be a UUID"}
	ErrOrderNotFound    = &AppError{http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found"}
	ErrRouteNotFound    = &AppError{http.StatusNotFound, "ROUTE_NOT_FOUND", "Route not found"}
	ErrMethodNotAllowed = &AppError{http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed"}
	ErrNoPaymentSession = &AppError{http.StatusConflict, "NO_PAYMENT_SESSION", "No payment session found for this order"}
	ErrGateway          = &AppError{http.StatusBadGateway, "GATEWAY_ERROR", "Checkout provider request failed"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "server error"}
)
