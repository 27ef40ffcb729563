package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHMACTokenService(t *testing.T, ttl time.Duration) TokenService {
	t.Helper()

	svc, err := NewTokenService(ttl, "campaign-engine", "campaign-engine-api", false, "", "", "test-secret-key-for-hmac-signing")
	require.NoError(t, err)
	return svc
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)

	token, err := svc.GenerateOperatorToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateOperatorToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.OperatorID)
	assert.Equal(t, "access", claims.TokenType)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := newHMACTokenService(t, -time.Minute)

	token, err := svc.GenerateOperatorToken(42)
	require.NoError(t, err)

	_, err = svc.ValidateOperatorToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestMalformedTokenRejected(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)

	_, err := svc.ValidateOperatorToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenSignedWithDifferentSecretRejected(t *testing.T) {
	issuing := newHMACTokenService(t, time.Hour)
	validating, err := NewTokenService(time.Hour, "campaign-engine", "campaign-engine-api", false, "", "", "a-completely-different-secret")
	require.NoError(t, err)

	token, err := issuing.GenerateOperatorToken(42)
	require.NoError(t, err)

	_, err = validating.ValidateOperatorToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSecretKeyRequiredForHMAC(t *testing.T) {
	_, err := NewTokenService(time.Hour, "campaign-engine", "campaign-engine-api", false, "", "", "")
	assert.Error(t, err)
}
