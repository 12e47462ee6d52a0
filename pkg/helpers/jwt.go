package helpers

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/errgroup"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
)

// JWTManager handles generation and validation of JWT tokens.
// Access and refresh tokens use separate secrets, so a leaked access secret
// cannot mint refresh tokens and vice versa.
type JWTManager struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	now func() time.Time
}

func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID is the token subject.
func (c *Claims) UserID() string { return c.Subject }

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func (m *JWTManager) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

func (m *JWTManager) sign(subject, email, role, typ string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := m.clock()
	exp := now.Add(ttl)
	claims := &Claims{
		Email:     email,
		Role:      role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(secret)
	return s, exp, err
}

func (m *JWTManager) GenerateAccessToken(subject, email, role string) (string, time.Time, error) {
	return m.sign(subject, email, role, tokenTypeAccess, m.AccessSecret, m.AccessTTL)
}

func (m *JWTManager) GenerateRefreshToken(subject, email, role string) (string, time.Time, error) {
	return m.sign(subject, email, role, tokenTypeRefresh, m.RefreshSecret, m.RefreshTTL)
}

// IssuePair signs the access and refresh tokens for the same claim set concurrently.
func (m *JWTManager) IssuePair(ctx context.Context, subject, email, role string) (TokenPair, error) {
	var pair TokenPair
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pair.AccessToken, pair.AccessTokenExpiry, err = m.GenerateAccessToken(subject, email, role)
		return err
	})
	g.Go(func() error {
		var err error
		pair.RefreshToken, pair.RefreshTokenExpiry, err = m.GenerateRefreshToken(subject, email, role)
		return err
	})
	if err := g.Wait(); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	return m.parseToken(tokenStr, m.AccessSecret, tokenTypeAccess)
}

func (m *JWTManager) ParseRefreshToken(tokenStr string) (*Claims, error) {
	return m.parseToken(tokenStr, m.RefreshSecret, tokenTypeRefresh)
}

func (m *JWTManager) parseToken(tokenStr string, secret []byte, typ string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.clock), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != typ {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}
