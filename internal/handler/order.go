package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/josh-kwaku/checkout-orders/internal/domain"
	"github.com/josh-kwaku/checkout-orders/internal/service/payment"
)

type orderService interface {
	CreatePayment(ctx context.Context, req payment.CreatePaymentRequest) (*domain.Payment, error)
	ReconcileStatus(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	ListPayments(ctx context.Context) ([]domain.Payment, error)
}

type OrderHandler struct {
	orders orderService
}

func NewOrderHandler(orders orderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderRequest struct {
	Amount   json.RawMessage `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
}

func (r createOrderRequest) Validate() []FieldError {
	var errs []FieldError

	if _, msg := parseAmount(r.Amount); msg != "" {
		errs = append(errs, FieldError{Field: "amount", Message: msg})
	}

	if r.Currency == "" {
		errs = append(errs, FieldError{Field: "currency", Message: "required"})
	} else if !domain.Currency(r.Currency).IsValid() {
		errs = append(errs, FieldError{Field: "currency", Message: "must be a valid ISO 4217 currency code"})
	}

	if strings.TrimSpace(r.Receipt) == "" {
		errs = append(errs, FieldError{Field: "receipt", Message: "must not be empty"})
	}

	return errs
}

func (r createOrderRequest) toServiceRequest() payment.CreatePaymentRequest {
	amount, _ := parseAmount(r.Amount)
	return payment.CreatePaymentRequest{
		Amount:   amount,
		Currency: domain.Currency(r.Currency),
		Receipt:  strings.TrimSpace(r.Receipt),
	}
}

// parseAmount accepts JSON numbers that are whole and >= 1, including forms
// like 100.0 or 1e3. Quoted numbers are rejected.
func parseAmount(raw json.RawMessage) (int64, string) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, "required"
	}
	n := json.Number(s)
	if v, err := n.Int64(); err == nil {
		if v < 1 {
			return 0, "must be greater than or equal to 1"
		}
		return v, ""
	}
	f, err := n.Float64()
	if err != nil {
		return 0, "must be a number"
	}
	if f != math.Trunc(f) {
		return 0, "must be an integer"
	}
	if f < 1 {
		return 0, "must be greater than or equal to 1"
	}
	if f >= math.MaxInt64 {
		return 0, "is too large"
	}
	return int64(f), ""
}

type linkDTO struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type orderDTO struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Receipt   string    `json:"receipt"`
	Status    string    `json:"status"`
	Links     []linkDTO `json:"links,omitempty"`
}

func toOrderDTO(p *domain.Payment) orderDTO {
	dto := orderDTO{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		Amount:    p.Amount,
		Currency:  string(p.Currency),
		Receipt:   p.Receipt,
		Status:    string(p.Status),
	}
	if p.SessionURL != nil && *p.SessionURL != "" {
		dto.Links = []linkDTO{{Rel: "session_link", Href: *p.SessionURL}}
	}
	return dto
}

type orderListResponse struct {
	Orders []orderDTO `json:"orders"`
}

type redirectResponse struct {
	Message string   `json:"message"`
	Order   orderDTO `json:"order"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			RespondValidationError(w, []FieldError{{Field: typeErr.Field, Message: "must be a string"}})
			return
		}
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	p, err := h.orders.CreatePayment(r.Context(), req.toServiceRequest())
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/orders/%s", p.ID))
	RespondJSON(w, http.StatusCreated, toOrderDTO(p))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	payments, err := h.orders.ListPayments(r.Context())
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	resp := orderListResponse{Orders: make([]orderDTO, 0, len(payments))}
	for i := range payments {
		resp.Orders = append(resp.Orders, toOrderDTO(&payments[i]))
	}
	RespondJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	p, err := h.orders.GetPayment(r.Context(), id)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, toOrderDTO(p))
}

func (h *OrderHandler) PaymentRedirect(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	p, err := h.orders.ReconcileStatus(r.Context(), id)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, redirectResponse{
		Message: "Order updated successfully",
		Order:   toOrderDTO(p),
	})
}

func orderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		RespondAppError(w, ErrInvalidOrderID, nil)
		return uuid.Nil, false
	}
	return id, true
}
