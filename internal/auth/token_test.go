package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewManager("secret", "refresh-secret")

	token, err := m.AccessToken("user-1", "jane@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	m := NewManager("secret", "refresh-secret")

	token, err := m.RefreshToken("user-1", "jane@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := m.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	m := NewManager("secret", "refresh-secret")

	access, err := m.AccessToken("user-1", "jane@example.com", time.Hour)
	require.NoError(t, err)
	refresh, err := m.RefreshToken("user-1", "jane@example.com", time.Hour)
	require.NoError(t, err)

	_, err = m.ParseRefreshToken(access)
	require.Error(t, err)
	_, err = m.ParseAccessToken(refresh)
	require.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	m := NewManager("secret", "refresh-secret")
	other := NewManager("other-secret", "other-refresh")

	token, err := m.AccessToken("user-1", "jane@example.com", time.Hour)
	require.NoError(t, err)

	_, err = other.ParseAccessToken(token)
	require.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewManager("secret", "refresh-secret")

	token, err := m.AccessToken("user-1", "jane@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseAccessToken(token)
	require.Error(t, err)
}

func TestGarbageRejected(t *testing.T) {
	m := NewManager("secret", "refresh-secret")

	_, err := m.ParseAccessToken("not.a.token")
	require.Error(t, err)
	_, err = m.ParseAccessToken("")
	require.Error(t, err)
}
