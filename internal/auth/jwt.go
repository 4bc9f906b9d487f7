package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims identifies the API client a checkout access token was issued to.
type Claims struct {
	ClientID string
	Account  string
	TokenID  uuid.UUID
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Account string `json:"account"`
}

func GenerateToken(clientID, account, audience, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   clientID,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Account: account,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("GenerateToken: %w", err)
	}
	return signed, nil
}

func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("ValidateToken: invalid token claims")
	}
	if tc.Subject == "" {
		return nil, fmt.Errorf("ValidateToken: missing subject")
	}

	tokenID, err := uuid.Parse(tc.ID)
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: invalid jti in token: %w", err)
	}

	return &Claims{
		ClientID: tc.Subject,
		Account:  tc.Account,
		TokenID:  tokenID,
	}, nil
}
