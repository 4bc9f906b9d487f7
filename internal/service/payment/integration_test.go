package payment_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/checkout-orders/internal/auth"
	"github.com/josh-kwaku/checkout-orders/internal/checkout"
	"github.com/josh-kwaku/checkout-orders/internal/domain"
	"github.com/josh-kwaku/checkout-orders/internal/mockprovider"
	"github.com/josh-kwaku/checkout-orders/internal/repository"
	"github.com/josh-kwaku/checkout-orders/internal/service/payment"
	"github.com/josh-kwaku/checkout-orders/internal/testutil"
)

const (
	providerAccount = "T11223674"
	providerJWT     = "integration-jwt"
)

func startProvider(t *testing.T) *httptest.Server {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	srv := httptest.NewServer(mockprovider.NewServer(mockprovider.Config{
		PublicURL:        "http://checkout.local",
		Account:          providerAccount,
		ClientID:         "client",
		ClientSecretHash: string(hash),
		JWTSecret:        providerJWT,
		TokenTTL:         time.Hour,
	}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func setupPaymentService(t *testing.T, db *sql.DB, providerURL string) *payment.Service {
	t.Helper()
	client := checkout.NewClient(checkout.Config{
		AuthURL:          providerURL + "/v1/accounts/" + providerAccount + "/auth/token",
		Audience:         providerURL + "/v1/accounts/" + providerAccount,
		ClientID:         "client",
		ClientSecret:     "secret",
		SessionURL:       providerURL + "/v1/sessions-profile",
		SessionStatusURL: providerURL + "/v1/sessions",
		ProfileID:        "default",
		Timeout:          5 * time.Second,
	})
	return payment.NewService(repository.NewPaymentRepository(db), client, "http://localhost:3000")
}

func pushEvent(t *testing.T, providerURL, sessionID, name string) {
	t.Helper()
	token, err := auth.GenerateToken("client", providerAccount, "test", providerJWT, time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, providerURL+"/v1/sessions/"+sessionID+"/events",
		bytes.NewBufferString(`{"name":"`+name+`"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCreateAndReconcile_HappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := startProvider(t)
	svc := setupPaymentService(t, db, provider.URL)
	ctx := context.Background()

	p, err := svc.CreatePayment(ctx, payment.CreatePaymentRequest{Amount: 2500, Currency: "NOK", Receipt: "order-42"})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, p.Status)
	require.True(t, p.HasSession())
	assert.Equal(t, "http://checkout.local/?sid="+*p.SessionID, *p.SessionURL)

	reconciled, err := svc.ReconcileStatus(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, reconciled.Status)

	pushEvent(t, provider.URL, *p.SessionID, domain.ProviderStatusAuthorized)
	reconciled, err = svc.ReconcileStatus(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusAuthorized, reconciled.Status)

	pushEvent(t, provider.URL, *p.SessionID, domain.ProviderStatusCaptured)
	reconciled, err = svc.ReconcileStatus(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCaptured, reconciled.Status)
	assert.Equal(t, domain.PaymentStatusCaptured, testutil.GetPaymentStatus(t, db, p.ID))
}

func TestCreatePayment_ProviderDownMarksFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := startProvider(t)
	svc := setupPaymentService(t, db, provider.URL)
	provider.Close()
	ctx := context.Background()

	_, err := svc.CreatePayment(ctx, payment.CreatePaymentRequest{Amount: 100, Currency: "EUR", Receipt: "order-down"})
	var gwErr *domain.GatewayError
	require.True(t, errors.As(err, &gwErr))

	orders, err := svc.ListPayments(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.PaymentStatusFailed, orders[0].Status)
	assert.Nil(t, orders[0].SessionID)
	assert.Nil(t, orders[0].SessionURL)

	_, err = svc.ReconcileStatus(ctx, orders[0].ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestReconcileStatus_UnknownOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := startProvider(t)
	svc := setupPaymentService(t, db, provider.URL)

	id := testutil.SeedPayment(t, db, 100, "NOK", "seeded", domain.PaymentStatusPending, nil)
	_, err := svc.ReconcileStatus(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = svc.GetPayment(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreatePayment_ConcurrentCreatesAreIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := startProvider(t)
	svc := setupPaymentService(t, db, provider.URL)

	const n = 10
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreatePayment(context.Background(), payment.CreatePaymentRequest{Amount: 100, Currency: "NOK", Receipt: "same-receipt"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, n, testutil.CountPayments(t, db))
}
