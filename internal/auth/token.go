package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, wrong algorithm, structural malformation, expiry, or a
// missing subject claim. Callers get no further detail to prevent probing.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the verified identity claim extracted from a token.
type Claims struct {
	Subject string
}

// TokenService issues and verifies signed bearer tokens. It is constructed
// once at startup with the process-wide secret and TTL and shared across
// requests; it holds no mutable state.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService signing with HS256 under the given
// symmetric secret. Tokens expire after ttl.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue produces a compact signed token with the given username as subject.
// Each token carries a unique ULID jti alongside issue and expiry times.
func (s *TokenService) Issue(username string) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   username,
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify decodes and validates a token string, returning its claims.
// Any failure maps to ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	var registered jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(tokenString, &registered, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if registered.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{Subject: registered.Subject}, nil
}
