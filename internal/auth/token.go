// Package auth issues and verifies the HS256 bearer tokens used by the API.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs access tokens with the primary secret and refresh tokens
// with a separate one, so a leaked refresh token cannot be replayed as an
// access token.
type Manager struct {
	secret        []byte
	refreshSecret []byte
}

func NewManager(secret, refreshSecret string) *Manager {
	return &Manager{secret: []byte(secret), refreshSecret: []byte(refreshSecret)}
}

func (m *Manager) AccessToken(userID, email string, ttl time.Duration) (string, error) {
	return sign(m.secret, userID, email, ttl)
}

func (m *Manager) RefreshToken(userID, email string, ttl time.Duration) (string, error) {
	return sign(m.refreshSecret, userID, email, ttl)
}

func (m *Manager) ParseAccessToken(token string) (*Claims, error) {
	return parse(m.secret, token)
}

func (m *Manager) ParseRefreshToken(token string) (*Claims, error) {
	return parse(m.refreshSecret, token)
}

func sign(secret []byte, userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parse(secret []byte, token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
