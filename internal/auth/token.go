// Package auth provides JWT token issuance and verification plus the
// HTTP middleware that resolves the current user for request handlers.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors.
var (
	// ErrInvalidToken indicates the token is malformed or has a bad signature.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("token expired")
)

// Claims carries the authenticated user's identity inside a JWT.
type Claims struct {
	UserID  int64 `json:"uid"`
	IsAdmin bool  `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

// Maker issues and verifies signed access tokens.
type Maker interface {
	// CreateToken issues a token for the user, valid for the
	// configured TTL.
	CreateToken(userID int64, isAdmin bool) (string, error)

	// VerifyToken checks the token's signature and expiry and returns
	// its claims.
	VerifyToken(token string) (*Claims, error)
}

// JWTMaker implements Maker using HMAC-SHA256 signed JWTs.
type JWTMaker struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker creates a JWT maker with the given signing key and token TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) (*JWTMaker, error) {
	if len(secretKey) < 32 {
		return nil, fmt.Errorf("secret key must be at least 32 characters, got %d", len(secretKey))
	}
	return &JWTMaker{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}, nil
}

// CreateToken issues a signed token for the user.
func (m *JWTMaker) CreateToken(userID int64, isAdmin bool) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the token and returns its claims.
func (m *JWTMaker) VerifyToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Ensure JWTMaker implements Maker.
var _ Maker = (*JWTMaker)(nil)
