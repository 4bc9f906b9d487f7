package mockprovider_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/checkout-orders/internal/auth"
	"github.com/josh-kwaku/checkout-orders/internal/checkout"
	"github.com/josh-kwaku/checkout-orders/internal/domain"
	"github.com/josh-kwaku/checkout-orders/internal/mockprovider"
)

const (
	testAccount   = "T11223674"
	testClientID  = "client-id"
	testSecret    = "client-secret"
	testJWTSecret = "jwt-secret"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testSecret), bcrypt.MinCost)
	require.NoError(t, err)

	srv := httptest.NewServer(mockprovider.NewServer(mockprovider.Config{
		PublicURL:        "http://checkout.local",
		Account:          testAccount,
		ClientID:         testClientID,
		ClientSecretHash: string(hash),
		JWTSecret:        testJWTSecret,
		TokenTTL:         time.Hour,
	}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func clientFor(srv *httptest.Server, secret string) *checkout.Client {
	return checkout.NewClient(checkout.Config{
		AuthURL:          srv.URL + "/v1/accounts/" + testAccount + "/auth/token",
		Audience:         srv.URL + "/v1/accounts/" + testAccount,
		ClientID:         testClientID,
		ClientSecret:     secret,
		SessionURL:       srv.URL + "/v1/sessions-profile",
		SessionStatusURL: srv.URL + "/v1/sessions",
		ProfileID:        "default",
		Timeout:          5 * time.Second,
	})
}

func appendEvent(t *testing.T, srv *httptest.Server, sessionID, name string) {
	t.Helper()
	token, err := auth.GenerateToken(testClientID, testAccount, "test", testJWTSecret, time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/sessions/"+sessionID+"/events",
		bytes.NewBufferString(`{"name":"`+name+`"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestServer_SessionLifecycle(t *testing.T) {
	srv := startServer(t)
	c := clientFor(srv, testSecret)
	ctx := context.Background()

	session, err := c.CreateSession(ctx, domain.SessionRequest{
		ReturnURL: "http://localhost:3000/orders/1/payment-redirect",
		Amount:    1000,
		Currency:  "NOK",
		Reference: "receipt-1",
	})
	require.NoError(t, err)
	assert.Contains(t, session.ID, testAccount+".")
	assert.Equal(t, "http://checkout.local/?sid="+session.ID, session.URL)

	status, err := c.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderStatusInitialized, status.LatestEventName())

	appendEvent(t, srv, session.ID, domain.ProviderStatusAuthorized)
	appendEvent(t, srv, session.ID, domain.ProviderStatusCaptured)

	status, err = c.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, status.Events, 3)
	assert.Equal(t, domain.ProviderStatusCaptured, status.LatestEventName())
	assert.False(t, status.Events[0].CreatedAt.IsZero())
}

func TestServer_Rejections(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	t.Run("wrong client secret", func(t *testing.T) {
		_, err := clientFor(srv, "nope").CreateSession(ctx, domain.SessionRequest{ReturnURL: "http://x", Amount: 1, Currency: "NOK", Reference: "r"})
		var gwErr *domain.GatewayError
		require.True(t, errors.As(err, &gwErr))
		assert.Equal(t, http.StatusUnauthorized, gwErr.StatusCode)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := clientFor(srv, testSecret).GetSession(ctx, "T11223674.missing")
		var gwErr *domain.GatewayError
		require.True(t, errors.As(err, &gwErr))
		assert.Equal(t, http.StatusNotFound, gwErr.StatusCode)
	})

	t.Run("invalid currency", func(t *testing.T) {
		_, err := clientFor(srv, testSecret).CreateSession(ctx, domain.SessionRequest{ReturnURL: "http://x", Amount: 1, Currency: "XXX", Reference: "r"})
		var gwErr *domain.GatewayError
		require.True(t, errors.As(err, &gwErr))
		assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	})

	t.Run("missing bearer token", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/v1/sessions/anything")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
