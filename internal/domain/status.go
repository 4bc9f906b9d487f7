package domain

// Statuses reported by the checkout provider in session events.
const (
	ProviderStatusInitialized         = "INITIALIZED"
	ProviderStatusOnHold              = "ON_HOLD"
	ProviderStatusAuthorized          = "AUTHORIZED"
	ProviderStatusPartiallyCaptured   = "PARTIALLY_CAPTURED"
	ProviderStatusCaptured            = "CAPTURED"
	ProviderStatusAuthorizationVoided = "AUTHORIZATION_VOIDED"
	ProviderStatusPartiallyRefunded   = "PARTIALLY_REFUNDED"
	ProviderStatusRefunded            = "REFUNDED"
	ProviderStatusRejected            = "REJECTED"
	ProviderStatusFailed              = "FAILED"
)

var providerStatusMap = map[string]PaymentStatus{
	ProviderStatusInitialized:         PaymentStatusPending,
	ProviderStatusOnHold:              PaymentStatusPending,
	ProviderStatusAuthorized:          PaymentStatusAuthorized,
	ProviderStatusPartiallyCaptured:   PaymentStatusCaptured,
	ProviderStatusCaptured:            PaymentStatusCaptured,
	ProviderStatusAuthorizationVoided: PaymentStatusCancelled,
	ProviderStatusPartiallyRefunded:   PaymentStatusRefunded,
	ProviderStatusRefunded:            PaymentStatusRefunded,
	ProviderStatusRejected:            PaymentStatusFailed,
	ProviderStatusFailed:              PaymentStatusFailed,
}

// MapProviderStatus translates a provider event name into a local status.
// Unknown names map to PENDING.
func MapProviderStatus(s string) PaymentStatus {
	if status, ok := providerStatusMap[s]; ok {
		return status
	}
	return PaymentStatusPending
}
