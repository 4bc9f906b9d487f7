package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/josh-kwaku/checkout-orders/internal/domain"
)

type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *domain.StoreError
	if errors.As(err, &se) {
		return fmt.Errorf("%s: %w", op, err)
	}
	e := &domain.StoreError{Op: op, Err: err}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		e.Code = string(pqErr.Code)
	}
	return e
}
