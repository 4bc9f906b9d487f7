package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("CreatePayment: %w", &StoreError{Op: "Insert", Err: cause})

	var storeErr *StoreError
	assert.True(t, errors.As(err, &storeErr))
	assert.ErrorIs(t, err, cause)
	assert.False(t, storeErr.IsConstraintViolation())

	violation := &StoreError{Op: "AttachSession", Code: "23514", Err: cause}
	assert.True(t, violation.IsConstraintViolation())
	assert.Contains(t, violation.Error(), "23514")
}

func TestGatewayError(t *testing.T) {
	err := &GatewayError{Op: "CreateSession", StatusCode: 503, Err: errors.New("unavailable")}
	assert.Contains(t, err.Error(), "status 503")

	wrapped := fmt.Errorf("CreatePayment: %w", err)
	var gwErr *GatewayError
	assert.True(t, errors.As(wrapped, &gwErr))
	assert.Equal(t, 503, gwErr.StatusCode)
}
