package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/josh-kwaku/checkout-orders/internal/metrics"
)

// tokenExpiryMargin is subtracted from the provider's expires_in so a token
// is never used right at the edge of its lifetime.
const tokenExpiryMargin = 300 * time.Second

type cachedToken struct {
	value  string
	expiry time.Time
}

// TokenSource obtains client-credentials access tokens and caches them until
// shortly before they expire. Concurrent callers that miss the cache share a
// single in-flight request.
type TokenSource struct {
	httpClient   *http.Client
	authURL      string
	audience     string
	clientID     string
	clientSecret string
	now          func() time.Time

	mu     sync.Mutex
	cached cachedToken
	group  singleflight.Group
}

func NewTokenSource(httpClient *http.Client, authURL, audience, clientID, clientSecret string, now func() time.Time) *TokenSource {
	if now == nil {
		now = time.Now
	}
	return &TokenSource{
		httpClient:   httpClient,
		authURL:      authURL,
		audience:     audience,
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          now,
	}
}

type tokenRequest struct {
	GrantType string `json:"grant_type"`
	Audience  string `json:"audience"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Token returns a cached token while now < expiry, otherwise fetches a new one.
// The shared fetch is bounded by the HTTP client timeout rather than by any one
// caller; a caller whose ctx ends stops waiting without affecting the others.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	if tok, ok := s.valid(); ok {
		return tok, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("token", func() (any, error) {
		if tok, ok := s.valid(); ok {
			return tok, nil
		}
		return s.fetch(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return "", gatewayErr("FetchToken", 0, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate drops the cached token so the next call fetches a fresh one.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.cached = cachedToken{}
	s.mu.Unlock()
}

func (s *TokenSource) valid() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached.value != "" && s.now().Before(s.cached.expiry) {
		return s.cached.value, true
	}
	return "", false
}

func (s *TokenSource) fetch(ctx context.Context) (string, error) {
	const op = "FetchToken"

	body, err := json.Marshal(tokenRequest{GrantType: "client_credentials", Audience: s.audience})
	if err != nil {
		return "", gatewayErr(op, 0, fmt.Errorf("marshal: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL, bytes.NewReader(body))
	if err != nil {
		return "", gatewayErr(op, 0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.clientID, s.clientSecret)

	issuedAt := s.now()
	var resp tokenResponse
	if err := send(ctx, s.httpClient, op, req, &resp); err != nil {
		metrics.TokenFetches.WithLabelValues(metrics.OutcomeError).Inc()
		return "", err
	}
	if resp.AccessToken == "" {
		metrics.TokenFetches.WithLabelValues(metrics.OutcomeError).Inc()
		return "", gatewayErr(op, http.StatusOK, fmt.Errorf("empty access_token"))
	}
	metrics.TokenFetches.WithLabelValues(metrics.OutcomeSuccess).Inc()

	s.mu.Lock()
	s.cached = cachedToken{
		value:  resp.AccessToken,
		expiry: issuedAt.Add(time.Duration(resp.ExpiresIn)*time.Second - tokenExpiryMargin),
	}
	s.mu.Unlock()

	return resp.AccessToken, nil
}
