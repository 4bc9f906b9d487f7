package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrInvalidState = errors.New("no payment session found for this order")
)

// StoreError reports a failed persistence operation. Code carries the
// Postgres SQLSTATE when one is available.
type StoreError struct {
	Op   string
	Code string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: store error (sqlstate %s): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: store error: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsConstraintViolation reports whether the failure was an integrity
// constraint violation (SQLSTATE class 23).
func (e *StoreError) IsConstraintViolation() bool {
	return len(e.Code) == 5 && e.Code[:2] == "23"
}

// GatewayError reports a failed call to the checkout provider. StatusCode is
// zero when no HTTP response was received.
type GatewayError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: gateway error (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: gateway error: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
