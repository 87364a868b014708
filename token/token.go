// Package token issues and verifies the signed session tokens carried in
// the access_token cookie.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TTL is how long a freshly issued token stays valid.
	TTL = 7 * 24 * time.Hour
	// refreshThreshold is the remaining validity below which the session
	// middleware replaces the cookie with a fresh token.
	refreshThreshold = TTL / 2
)

var (
	ErrInvalidToken = errors.New("token: invalid token")
	ErrExpired      = errors.New("token: expired")
)

// Claims are the statements embedded in a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"_id"`
	Username string `json:"username"`
}

// Issuer signs and verifies session tokens with a shared HMAC secret.
type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

// Generate signs a 7-day token carrying the user's id and username.
func (i *Issuer) Generate(userID, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
		UserID:   userID,
		Username: username,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify parses and validates a token string. It returns ErrExpired for an
// expired token and ErrInvalidToken for anything else that fails signature
// or structural checks.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// NeedsRefresh reports whether the token's remaining validity has dropped
// below half its lifetime (3.5 days).
func (i *Issuer) NeedsRefresh(claims *Claims) bool {
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Until(claims.ExpiresAt.Time) < refreshThreshold
}
