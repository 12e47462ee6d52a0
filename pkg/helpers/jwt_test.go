package helpers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestJWT() *JWTManager {
	return NewJWTManager("access-secret", "refresh-secret", 7*24*time.Hour, 30*24*time.Hour)
}

func TestIssuePair_ClaimsAndExpiry(t *testing.T) {
	m := newTestJWT()
	before := time.Now()

	pair, err := m.IssuePair(context.Background(), "user-1", "a@example.com", "SELLER")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.AccessToken == pair.RefreshToken {
		t.Fatalf("unexpected pair: %+v", pair)
	}
	if !pair.AccessTokenExpiry.After(before) || !pair.RefreshTokenExpiry.After(pair.AccessTokenExpiry) {
		t.Fatalf("refresh should outlive access: %v vs %v", pair.AccessTokenExpiry, pair.RefreshTokenExpiry)
	}

	claims, err := m.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken error: %v", err)
	}
	if claims.UserID() != "user-1" || claims.Email != "a@example.com" || claims.Role != "SELLER" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(before) {
		t.Fatalf("access token expiry should be in the future, got %v", claims.ExpiresAt)
	}
	if claims.IssuedAt == nil {
		t.Fatal("missing iat")
	}
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	m := newTestJWT()
	pair, err := m.IssuePair(context.Background(), "user-1", "a@example.com", "BUYER")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	if _, err := m.ParseRefreshToken(pair.AccessToken); err == nil {
		t.Fatal("access token accepted as refresh token")
	}
	if _, err := m.ParseAccessToken(pair.RefreshToken); err == nil {
		t.Fatal("refresh token accepted as access token")
	}
}

func TestSameSecret_TokenTypeStillEnforced(t *testing.T) {
	m := NewJWTManager("shared", "shared", time.Hour, 2*time.Hour)
	pair, err := m.IssuePair(context.Background(), "user-1", "a@example.com", "BUYER")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}
	if _, err := m.ParseRefreshToken(pair.AccessToken); !errors.Is(err, ErrInvalidTokenType) {
		t.Fatalf("expected ErrInvalidTokenType, got %v", err)
	}
}

func TestParse_ExpiredToken(t *testing.T) {
	m := newTestJWT()
	m.now = func() time.Time { return time.Now().Add(-31 * 24 * time.Hour) }
	pair, err := m.IssuePair(context.Background(), "user-1", "a@example.com", "BUYER")
	if err != nil {
		t.Fatalf("IssuePair error: %v", err)
	}

	m.now = time.Now
	if _, err := m.ParseRefreshToken(pair.RefreshToken); err == nil {
		t.Fatal("expired refresh token accepted")
	}
	if _, err := m.ParseAccessToken(pair.AccessToken); err == nil {
		t.Fatal("expired access token accepted")
	}
}

func TestParse_TamperedToken(t *testing.T) {
	m := newTestJWT()
	pair, _ := m.IssuePair(context.Background(), "user-1", "a@example.com", "BUYER")

	parts := strings.Split(pair.RefreshToken, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", pair.RefreshToken)
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := m.ParseRefreshToken(tampered); err == nil {
		t.Fatal("tampered token accepted")
	}
	if _, err := m.ParseRefreshToken("not-a-jwt"); err == nil {
		t.Fatal("malformed token accepted")
	}
	other := NewJWTManager("access-secret", "other-refresh", time.Hour, time.Hour)
	if _, err := other.ParseRefreshToken(pair.RefreshToken); err == nil {
		t.Fatal("token verified with the wrong secret")
	}
}
