package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusInitiated  PaymentStatus = "INITIATED"
	PaymentStatusAuthorized PaymentStatus = "AUTHORIZED"
	PaymentStatusCaptured   PaymentStatus = "CAPTURED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusInitiated, PaymentStatusAuthorized,
		PaymentStatusCaptured, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}

// Payment is a locally recorded order. Amount, Currency and Receipt are fixed
// at creation; SessionID and SessionURL are either both nil or both set.
type Payment struct {
	ID         uuid.UUID
	Amount     int64
	Currency   Currency
	Receipt    string
	Status     PaymentStatus
	SessionID  *string
	SessionURL *string
	CreatedAt  time.Time
}

func (p *Payment) HasSession() bool {
	return p.SessionID != nil && *p.SessionID != ""
}

type NewPayment struct {
	Amount   int64
	Currency Currency
	Receipt  string
}
