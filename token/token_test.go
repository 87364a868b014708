package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signWithExpiry(t *testing.T, secret string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   "5f1f77bcf86cd799439011aa",
		Username: "velopert",
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return s
}

func TestGenerateAndVerify(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("super-secret")

	tok, err := issuer.Generate("5f1f77bcf86cd799439011aa", "velopert")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	claims, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "5f1f77bcf86cd799439011aa" {
		t.Fatalf("UserID mismatch: got %q", claims.UserID)
	}
	if claims.Username != "velopert" {
		t.Fatalf("Username mismatch: got %q", claims.Username)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < TTL-time.Minute || remaining > TTL {
		t.Fatalf("unexpected expiry, %v remaining", remaining)
	}
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("secret")
	tok := signWithExpiry(t, "secret", -time.Hour)

	_, err := issuer.Verify(tok)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer("right-secret").Generate("id", "name")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	_, err = NewIssuer("wrong-secret").Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyTampered(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("secret")
	tok, err := issuer.Generate("id", "name")
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	// mutate one byte of the payload segment
	b := []byte(tok)
	mid := len(b) / 2
	if b[mid] == 'A' {
		b[mid] = 'B'
	} else {
		b[mid] = 'A'
	}

	if _, err := issuer.Verify(string(b)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	if _, err := NewIssuer("k").Verify("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNeedsRefresh(t *testing.T) {
	t.Parallel()

	issuer := NewIssuer("secret")

	fresh := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * 24 * time.Hour)),
	}}
	if issuer.NeedsRefresh(fresh) {
		t.Fatal("token with 5 days left should not need refresh")
	}

	aging := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(3 * 24 * time.Hour)),
	}}
	if !issuer.NeedsRefresh(aging) {
		t.Fatal("token with 3 days left should need refresh")
	}
}
