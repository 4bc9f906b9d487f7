package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CHECKOUT_CLIENT_ID", "id")
	t.Setenv("CHECKOUT_CLIENT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/orders?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, "default", cfg.CheckoutProfileID)
	assert.Equal(t, 30*time.Second, cfg.CheckoutTimeout)
	assert.Equal(t, "https://test.dintero.com/v1/accounts/T11223674/auth/token", cfg.CheckoutAuthURL)
	assert.Equal(t, "https://test.dintero.com/v1/accounts/T11223674", cfg.CheckoutAudience)
	assert.Equal(t, "postgres://u:p@localhost:5432/orders?sslmode=disable", cfg.DSN())
}

func TestLoad_AccountDrivesProviderDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/orders")
	t.Setenv("CHECKOUT_ACCOUNT", "P00000001")
	t.Setenv("CHECKOUT_AUDIENCE", "https://override.example/aud")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://test.dintero.com/v1/accounts/P00000001/auth/token", cfg.CheckoutAuthURL)
	assert.Equal(t, "https://override.example/aud", cfg.CheckoutAudience)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("empty provider credentials", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/orders")
		t.Setenv("CHECKOUT_CLIENT_ID", "")
		t.Setenv("CHECKOUT_CLIENT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("missing storage settings", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DATABASE_URL", "")
		t.Setenv("DB_HOST", "")
		_, err := Load()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})
}

func TestDSN_FromParts(t *testing.T) {
	cfg := Config{
		DBHost:     "db",
		DBPort:     5433,
		DBName:     "orders",
		DBUser:     "app",
		DBPassword: "p@ss word",
		DBSSLMode:  "require",
	}
	assert.Equal(t, "postgres://app:p%40ss%20word@db:5433/orders?sslmode=require", cfg.DSN())
}

func TestWriteTimeout_CoversTwoCheckoutCalls(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/orders")
	t.Setenv("CHECKOUT_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Greater(t, cfg.WriteTimeout(), 2*cfg.CheckoutTimeout)

	cfg.CheckoutTimeout = 5 * time.Second
	assert.Equal(t, 25*time.Second, cfg.WriteTimeout())
}
