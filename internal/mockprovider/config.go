package mockprovider

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Addr             string        `env:"MOCK_ADDR" envDefault:":8081"`
	PublicURL        string        `env:"MOCK_PUBLIC_URL" envDefault:"http://localhost:8081"`
	Account          string        `env:"CHECKOUT_ACCOUNT" envDefault:"T11223674"`
	ClientID         string        `env:"CHECKOUT_CLIENT_ID,required,notEmpty"`
	ClientSecret     string        `env:"CHECKOUT_CLIENT_SECRET"`
	ClientSecretHash string        `env:"MOCK_CLIENT_SECRET_HASH"`
	JWTSecret        string        `env:"MOCK_JWT_SECRET,required,notEmpty"`
	TokenTTL         time.Duration `env:"MOCK_TOKEN_TTL" envDefault:"1h"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv           string        `env:"APP_ENV" envDefault:"production"`
}

// Load reads the mock provider settings. When no bcrypt hash is supplied the
// plain client secret is hashed at start-up.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("mockprovider.Load: %w", err)
	}
	if cfg.ClientSecretHash == "" {
		if cfg.ClientSecret == "" {
			return nil, fmt.Errorf("mockprovider.Load: CHECKOUT_CLIENT_SECRET or MOCK_CLIENT_SECRET_HASH must be set")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.ClientSecret), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("mockprovider.Load: hash secret: %w", err)
		}
		cfg.ClientSecretHash = string(hash)
	}
	cfg.ClientSecret = ""
	return &cfg, nil
}
