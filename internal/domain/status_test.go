package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapProviderStatus(t *testing.T) {
	tests := []struct {
		in   string
		want PaymentStatus
	}{
		{"INITIALIZED", PaymentStatusPending},
		{"ON_HOLD", PaymentStatusPending},
		{"AUTHORIZED", PaymentStatusAuthorized},
		{"PARTIALLY_CAPTURED", PaymentStatusCaptured},
		{"CAPTURED", PaymentStatusCaptured},
		{"AUTHORIZATION_VOIDED", PaymentStatusCancelled},
		{"PARTIALLY_REFUNDED", PaymentStatusRefunded},
		{"REFUNDED", PaymentStatusRefunded},
		{"REJECTED", PaymentStatusFailed},
		{"FAILED", PaymentStatusFailed},
		{"", PaymentStatusPending},
		{"PENDING", PaymentStatusPending},
		{"captured", PaymentStatusPending},
		{"SOMETHING_NEW", PaymentStatusPending},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got := MapProviderStatus(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, MapProviderStatus(tc.in))
			assert.True(t, got.IsValid())
		})
	}
}

func TestSessionStatus_LatestEventName(t *testing.T) {
	tests := []struct {
		name   string
		status *SessionStatus
		want   string
	}{
		{"nil status", nil, "PENDING"},
		{"no events", &SessionStatus{ID: "s1"}, "PENDING"},
		{"empty events", &SessionStatus{ID: "s1", Events: []SessionEvent{}}, "PENDING"},
		{
			"last event wins regardless of timestamps",
			&SessionStatus{ID: "s1", Events: []SessionEvent{
				{Name: "INITIALIZED"},
				{Name: "CAPTURED"},
				{Name: "AUTHORIZED"},
			}},
			"AUTHORIZED",
		},
		{"blank name", &SessionStatus{ID: "s1", Events: []SessionEvent{{Name: ""}}}, "PENDING"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.status.LatestEventName())
		})
	}
}

func TestCurrencyIsValid(t *testing.T) {
	assert.True(t, Currency("NOK").IsValid())
	assert.True(t, Currency("USD").IsValid())
	assert.True(t, Currency("ZWL").IsValid())
	assert.False(t, Currency("nok").IsValid())
	assert.False(t, Currency("XXX").IsValid())
	assert.False(t, Currency("").IsValid())
}
