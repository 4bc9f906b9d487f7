package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/josh-kwaku/checkout-orders/internal/domain"
	"github.com/josh-kwaku/checkout-orders/internal/logging"
	"github.com/josh-kwaku/checkout-orders/internal/metrics"
)

type Config struct {
	AuthURL          string
	Audience         string
	ClientID         string
	ClientSecret     string
	SessionURL       string
	SessionStatusURL string
	ProfileID        string
	Timeout          time.Duration
	// Now overrides the clock used for token expiry. Defaults to time.Now.
	Now func() time.Time
}

// Client talks to the hosted checkout provider.
type Client struct {
	httpClient       *http.Client
	tokens           *TokenSource
	sessionURL       string
	sessionStatusURL string
	profileID        string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return &Client{
		httpClient:       httpClient,
		tokens:           NewTokenSource(httpClient, cfg.AuthURL, cfg.Audience, cfg.ClientID, cfg.ClientSecret, cfg.Now),
		sessionURL:       cfg.SessionURL,
		sessionStatusURL: strings.TrimSuffix(cfg.SessionStatusURL, "/"),
		profileID:        cfg.ProfileID,
	}
}

type sessionPayload struct {
	URL       sessionURLs  `json:"url"`
	Order     sessionOrder `json:"order"`
	ProfileID string       `json:"profile_id"`
}

type sessionURLs struct {
	ReturnURL string `json:"return_url"`
}

type sessionOrder struct {
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	MerchantReference string `json:"merchant_reference"`
}

type sessionCreated struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type sessionEvent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type sessionDetails struct {
	ID     string         `json:"id"`
	Events []sessionEvent `json:"events"`
}

func (c *Client) CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.CheckoutSession, error) {
	const op = "CreateSession"

	payload := sessionPayload{
		URL: sessionURLs{ReturnURL: req.ReturnURL},
		Order: sessionOrder{
			Amount:            req.Amount,
			Currency:          string(req.Currency),
			MerchantReference: req.Reference,
		},
		ProfileID: c.profileID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, gatewayErr(op, 0, fmt.Errorf("marshal: %w", err))
	}

	var created sessionCreated
	if err := c.authorized(ctx, op, http.MethodPost, c.sessionURL, body, &created); err != nil {
		return nil, err
	}
	if created.ID == "" || created.URL == "" {
		return nil, gatewayErr(op, 0, errors.New("session response missing id or url"))
	}
	return &domain.CheckoutSession{ID: created.ID, URL: created.URL}, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*domain.SessionStatus, error) {
	const op = "GetSession"

	var details sessionDetails
	endpoint := c.sessionStatusURL + "/" + url.PathEscape(sessionID)
	if err := c.authorized(ctx, op, http.MethodGet, endpoint, nil, &details); err != nil {
		return nil, err
	}

	status := &domain.SessionStatus{ID: details.ID, Events: make([]domain.SessionEvent, 0, len(details.Events))}
	for _, e := range details.Events {
		ev := domain.SessionEvent{ID: e.ID, Name: e.Name}
		if ts, err := time.Parse(time.RFC3339Nano, e.CreatedAt); err == nil {
			ev.CreatedAt = ts
		}
		status.Events = append(status.Events, ev)
	}
	return status, nil
}

func (c *Client) authorized(ctx context.Context, op, method, endpoint string, body []byte, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return gatewayErr(op, 0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	err = send(ctx, c.httpClient, op, req, out)
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) && gwErr.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
	}
	return err
}

func send(ctx context.Context, hc *http.Client, op string, req *http.Request, out any) error {
	log := logging.FromContext(ctx)

	start := time.Now()
	log.Info("checkout request sent", "operation", op, "method", req.Method, "url", req.URL.Redacted())

	resp, err := hc.Do(req)
	if err != nil {
		metrics.GatewayRequestDuration.WithLabelValues(op, metrics.OutcomeError).Observe(time.Since(start).Seconds())
		return gatewayErr(op, 0, err)
	}
	defer resp.Body.Close()

	log.Info("checkout response received",
		"operation", op,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.GatewayRequestDuration.WithLabelValues(op, metrics.OutcomeError).Observe(time.Since(start).Seconds())
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return gatewayErr(op, resp.StatusCode, fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(respBody))))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			metrics.GatewayRequestDuration.WithLabelValues(op, metrics.OutcomeError).Observe(time.Since(start).Seconds())
			return gatewayErr(op, resp.StatusCode, fmt.Errorf("decode response: %w", err))
		}
	}

	metrics.GatewayRequestDuration.WithLabelValues(op, metrics.OutcomeSuccess).Observe(time.Since(start).Seconds())
	return nil
}

func gatewayErr(op string, status int, err error) error {
	return &domain.GatewayError{Op: op, StatusCode: status, Err: err}
}
