package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("secret", 15*time.Minute)

	token, err := m.GenerateAccessToken("u1", "u1@campus.edu")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserId)
	assert.Equal(t, "u1@campus.edu", claims.Email)
	assert.NotEmpty(t, claims.TokenId)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt, 5*time.Second)
}

func TestGenerateRequiresUser(t *testing.T) {
	_, err := NewJWTManager("secret", time.Minute).GenerateAccessToken("", "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret", time.Minute).GenerateAccessToken("u1", "")
	require.NoError(t, err)

	_, err = NewJWTManager("other", time.Minute).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.GenerateAccessToken("u1", "")
	require.NoError(t, err)

	_, err = NewJWTManager("secret", time.Minute).ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateGarbage(t *testing.T) {
	_, err := NewJWTManager("secret", time.Minute).ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
