package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/josh-kwaku/checkout-orders/internal/domain"
)

func SeedPayment(t *testing.T, db *sql.DB, amount int64, currency, receipt string, status domain.PaymentStatus, sessionID *string) uuid.UUID {
	t.Helper()

	var sessionURL *string
	if sessionID != nil {
		u := "https://checkout.example.test/" + *sessionID
		sessionURL = &u
	}

	var id uuid.UUID
	err := db.QueryRow(
		`INSERT INTO orders.payments (amount, currency, receipt, status, session_id, session_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		amount, currency, receipt, status, sessionID, sessionURL,
	).Scan(&id)
	if err != nil {
		t.Fatalf("seed payment %s: %v", receipt, err)
	}
	return id
}

func CountPayments(t *testing.T, db *sql.DB) int {
	t.Helper()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM orders.payments`).Scan(&count); err != nil {
		t.Fatalf("count payments: %v", err)
	}
	return count
}

func GetPaymentStatus(t *testing.T, db *sql.DB, id uuid.UUID) domain.PaymentStatus {
	t.Helper()

	var status domain.PaymentStatus
	if err := db.QueryRow(`SELECT status FROM orders.payments WHERE id = $1`, id).Scan(&status); err != nil {
		t.Fatalf("get payment status %s: %v", id, err)
	}
	return status
}
