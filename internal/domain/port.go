package domain

import (
	"context"

	"github.com/google/uuid"
)

// UnitOfWork is a transaction-scoped view of the payment store. Every handle
// must end in exactly one Commit or Rollback.
type UnitOfWork interface {
	Insert(ctx context.Context, p NewPayment) (*Payment, error)
	AttachSession(ctx context.Context, id uuid.UUID, sessionID, sessionURL string) (*Payment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) (*Payment, error)
	Commit() error
	Rollback() error
}
