package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/josh-kwaku/checkout-orders/internal/domain"
	"github.com/josh-kwaku/checkout-orders/internal/logging"
	"github.com/josh-kwaku/checkout-orders/internal/metrics"
)

type paymentStore interface {
	Begin(ctx context.Context) (domain.UnitOfWork, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	List(ctx context.Context) ([]domain.Payment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) (*domain.Payment, error)
}

type checkoutGateway interface {
	CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*domain.SessionStatus, error)
}

type CreatePaymentRequest struct {
	Amount   int64
	Currency domain.Currency
	Receipt  string
}

type Service struct {
	payments paymentStore
	gateway  checkoutGateway
	baseURL  string
	tracer   trace.Tracer
}

// NewService wires the orchestrator. baseURL is the public origin the
// provider redirects the shopper back to.
func NewService(payments paymentStore, gateway checkoutGateway, baseURL string) *Service {
	return &Service{
		payments: payments,
		gateway:  gateway,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		tracer:   otel.Tracer("github.com/josh-kwaku/checkout-orders/internal/service/payment"),
	}
}

func (s *Service) ReturnURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/orders/%s/payment-redirect", s.baseURL, id)
}

// CreatePayment records a PENDING payment and opens a checkout session for
// it inside one unit of work. If the provider call fails the payment is
// committed as FAILED and the provider error is returned.
func (s *Service) CreatePayment(ctx context.Context, req CreatePaymentRequest) (_ *domain.Payment, err error) {
	ctx, span := s.tracer.Start(ctx, "payment.CreatePayment", trace.WithAttributes(
		attribute.Int64("payment.amount", req.Amount),
		attribute.String("payment.currency", string(req.Currency)),
	))
	defer func() { endSpan(span, err) }()
	log := logging.FromContext(ctx)

	// Writes run detached from the caller: once the provider has been called
	// the local row must survive a client disconnect.
	txCtx := context.WithoutCancel(ctx)

	uow, err := s.payments.Begin(txCtx)
	if err != nil {
		metrics.OrdersCreated.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	finished := false
	defer func() {
		if finished {
			return
		}
		if rbErr := uow.Rollback(); rbErr != nil {
			log.Error("rollback failed", "error", rbErr)
		}
		metrics.OrdersCreated.WithLabelValues(metrics.OutcomeError).Inc()
	}()

	p, err := uow.Insert(txCtx, domain.NewPayment{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}
	span.SetAttributes(attribute.String("payment.id", p.ID.String()))
	ctx = logging.With(ctx, "order_id", p.ID)
	txCtx = context.WithoutCancel(ctx)
	log = logging.FromContext(ctx)

	session, gwErr := s.gateway.CreateSession(ctx, domain.SessionRequest{
		ReturnURL: s.ReturnURL(p.ID),
		Amount:    p.Amount,
		Currency:  p.Currency,
		Reference: p.Receipt,
	})
	if gwErr != nil {
		if _, err := uow.SetStatus(txCtx, p.ID, domain.PaymentStatusFailed); err != nil {
			return nil, fmt.Errorf("CreatePayment: mark failed: %w", err)
		}
		finished = true
		if err := uow.Commit(); err != nil {
			metrics.OrdersCreated.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, fmt.Errorf("CreatePayment: commit failed status: %w", err)
		}
		metrics.OrdersCreated.WithLabelValues(metrics.OutcomeCompensated).Inc()
		log.Warn("checkout session failed, order marked failed", "error", gwErr)
		return nil, fmt.Errorf("CreatePayment: %w", gwErr)
	}

	p, err = uow.AttachSession(txCtx, p.ID, session.ID, session.URL)
	if err != nil {
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	finished = true
	if err := uow.Commit(); err != nil {
		metrics.OrdersCreated.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("CreatePayment: %w", err)
	}

	metrics.OrdersCreated.WithLabelValues(metrics.OutcomeSessionOpened).Inc()
	log.Info("order created", "session_id", session.ID, "amount", p.Amount, "currency", p.Currency)
	return p, nil
}

// ReconcileStatus pulls the session's event history from the provider and
// stores the status mapped from its last event. No write happens unless the
// provider call succeeds.
func (s *Service) ReconcileStatus(ctx context.Context, id uuid.UUID) (_ *domain.Payment, err error) {
	ctx, span := s.tracer.Start(ctx, "payment.ReconcileStatus", trace.WithAttributes(
		attribute.String("payment.id", id.String()),
	))
	defer func() { endSpan(span, err) }()

	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ReconcileStatus: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("ReconcileStatus: %w", domain.ErrNotFound)
	}
	if !p.HasSession() {
		return nil, fmt.Errorf("ReconcileStatus: %w", domain.ErrInvalidState)
	}
	ctx = logging.With(ctx, "order_id", p.ID, "session_id", *p.SessionID)

	session, err := s.gateway.GetSession(ctx, *p.SessionID)
	if err != nil {
		return nil, fmt.Errorf("ReconcileStatus: %w", err)
	}

	providerStatus := session.LatestEventName()
	status := domain.MapProviderStatus(providerStatus)
	span.SetAttributes(
		attribute.String("checkout.status", providerStatus),
		attribute.String("payment.status", string(status)),
	)

	updated, err := s.payments.SetStatus(ctx, p.ID, status)
	if err != nil {
		return nil, fmt.Errorf("ReconcileStatus: %w", err)
	}

	metrics.OrdersReconciled.WithLabelValues(string(status)).Inc()
	logging.FromContext(ctx).Info("order reconciled",
		"provider_status", providerStatus,
		"from", p.Status,
		"to", status,
	)
	return updated, nil
}

func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetPayment: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("GetPayment: %w", domain.ErrNotFound)
	}
	return p, nil
}

func (s *Service) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	payments, err := s.payments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListPayments: %w", err)
	}
	return payments, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
