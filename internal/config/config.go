package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST"`
	DBPort      int    `env:"DB_PORT" envDefault:"5432"`
	DBName      string `env:"DB_NAME"`
	DBUser      string `env:"DB_USER"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBSSLMode   string `env:"DB_SSLMODE" envDefault:"disable"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`

	CheckoutClientID         string        `env:"CHECKOUT_CLIENT_ID,required,notEmpty"`
	CheckoutClientSecret     string        `env:"CHECKOUT_CLIENT_SECRET,required,notEmpty"`
	CheckoutAccount          string        `env:"CHECKOUT_ACCOUNT" envDefault:"T11223674"`
	CheckoutAuthURL          string        `env:"CHECKOUT_AUTH_URL"`
	CheckoutAudience         string        `env:"CHECKOUT_AUDIENCE"`
	CheckoutSessionURL       string        `env:"CHECKOUT_SESSION_URL" envDefault:"https://checkout.test.dintero.com/v1/sessions-profile"`
	CheckoutSessionStatusURL string        `env:"CHECKOUT_SESSION_STATUS_URL" envDefault:"https://checkout.test.dintero.com/v1/sessions"`
	CheckoutProfileID        string        `env:"CHECKOUT_PROFILE_ID" envDefault:"default"`
	CheckoutTimeout          time.Duration `env:"CHECKOUT_TIMEOUT" envDefault:"30s"`

	BaseURL      string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	Host         string `env:"HOST" envDefault:"0.0.0.0"`
	Port         int    `env:"PORT" envDefault:"3000"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv       string `env:"APP_ENV" envDefault:"production"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	cfg.applyDerivedDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDerivedDefaults() {
	if c.CheckoutAuthURL == "" {
		c.CheckoutAuthURL = fmt.Sprintf("https://test.dintero.com/v1/accounts/%s/auth/token", c.CheckoutAccount)
	}
	if c.CheckoutAudience == "" {
		c.CheckoutAudience = fmt.Sprintf("https://test.dintero.com/v1/accounts/%s", c.CheckoutAccount)
	}
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" && (c.DBHost == "" || c.DBName == "" || c.DBUser == "") {
		return errors.New("either DATABASE_URL or DB_HOST, DB_NAME and DB_USER must be set")
	}
	if c.CheckoutTimeout <= 0 {
		return errors.New("CHECKOUT_TIMEOUT must be positive")
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("BASE_URL: %w", err)
	}
	return nil
}

// DSN returns DATABASE_URL when set, otherwise a URL assembled from the
// DB_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// WriteTimeout covers a cold create: a token fetch and a session call, each
// bounded by CheckoutTimeout, plus local work.
func (c *Config) WriteTimeout() time.Duration {
	return 2*c.CheckoutTimeout + 15*time.Second
}
