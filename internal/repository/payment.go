package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/checkout-orders/internal/domain"
)

const paymentColumns = `id, amount, currency, receipt, status, session_id, session_url, created_at`

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Begin opens a unit of work. The caller must end it with Commit or Rollback.
// The transaction and its statements ignore cancellation of ctx, so only an
// explicit Rollback discards the work.
func (r *PaymentRepository) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	tx, err := r.db.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return nil, storeErr("Begin", err)
	}
	return &paymentTx{tx: tx}, nil
}

func (r *PaymentRepository) Insert(ctx context.Context, p domain.NewPayment) (*domain.Payment, error) {
	return insertPayment(ctx, r.db, p)
}

// GetByID returns (nil, nil) when no payment has the given id.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM orders.payments WHERE id = $1`, id,
	)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("GetByID", err)
	}
	return p, nil
}

func (r *PaymentRepository) List(ctx context.Context) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM orders.payments`)
	if err != nil {
		return nil, storeErr("List", err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, storeErr("List", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("List", err)
	}
	return payments, nil
}

func (r *PaymentRepository) AttachSession(ctx context.Context, id uuid.UUID, sessionID, sessionURL string) (*domain.Payment, error) {
	return attachSession(ctx, r.db, id, sessionID, sessionURL)
}

func (r *PaymentRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error) {
	return setStatus(ctx, r.db, id, status)
}

// Count backs the liveness probe.
func (r *PaymentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM orders.payments`).Scan(&n); err != nil {
		return 0, storeErr("Count", err)
	}
	return n, nil
}

type paymentTx struct {
	tx *sql.Tx
}

func (t *paymentTx) Insert(ctx context.Context, p domain.NewPayment) (*domain.Payment, error) {
	return insertPayment(context.WithoutCancel(ctx), t.tx, p)
}

func (t *paymentTx) AttachSession(ctx context.Context, id uuid.UUID, sessionID, sessionURL string) (*domain.Payment, error) {
	return attachSession(context.WithoutCancel(ctx), t.tx, id, sessionID, sessionURL)
}

func (t *paymentTx) SetStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error) {
	return setStatus(context.WithoutCancel(ctx), t.tx, id, status)
}

func (t *paymentTx) Commit() error {
	return storeErr("Commit", t.tx.Commit())
}

func (t *paymentTx) Rollback() error {
	return storeErr("Rollback", t.tx.Rollback())
}

func insertPayment(ctx context.Context, q querier, p domain.NewPayment) (*domain.Payment, error) {
	row := q.QueryRowContext(ctx,
		`INSERT INTO orders.payments (amount, currency, receipt, status, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING `+paymentColumns,
		p.Amount, p.Currency, p.Receipt, domain.PaymentStatusPending,
	)
	created, err := scanPayment(row)
	if err != nil {
		return nil, storeErr("Insert", err)
	}
	return created, nil
}

func attachSession(ctx context.Context, q querier, id uuid.UUID, sessionID, sessionURL string) (*domain.Payment, error) {
	row := q.QueryRowContext(ctx,
		`UPDATE orders.payments SET session_id = $1, session_url = $2
		WHERE id = $3
		RETURNING `+paymentColumns,
		sessionID, sessionURL, id,
	)
	return scanUpdated("AttachSession", row)
}

func setStatus(ctx context.Context, q querier, id uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error) {
	row := q.QueryRowContext(ctx,
		`UPDATE orders.payments SET status = $1
		WHERE id = $2
		RETURNING `+paymentColumns,
		status, id,
	)
	return scanUpdated("SetStatus", row)
}

func scanUpdated(op string, row *sql.Row) (*domain.Payment, error) {
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storeErr(op, fmt.Errorf("update matched no rows: %w", domain.ErrNotFound))
		}
		return nil, storeErr(op, err)
	}
	return p, nil
}

func scanPayment(s scanner) (*domain.Payment, error) {
	var p domain.Payment
	var sessionID, sessionURL sql.NullString

	err := s.Scan(
		&p.ID, &p.Amount, &p.Currency, &p.Receipt, &p.Status,
		&sessionID, &sessionURL, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sessionID.Valid {
		p.SessionID = &sessionID.String
	}
	if sessionURL.Valid {
		p.SessionURL = &sessionURL.String
	}
	return &p, nil
}
