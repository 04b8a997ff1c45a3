package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken(t *testing.T) {
	tok, err := NewAccessToken("secret", "staff-4", "STAFF", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tok.Token, claims, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	sub, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "staff-4", sub)
	assert.Equal(t, "STAFF", claims["role"])
}

func TestNewAccessTokenRejectsBadInput(t *testing.T) {
	_, err := NewAccessToken("", "staff-4", "STAFF", time.Hour)
	assert.Error(t, err)
	_, err = NewAccessToken("secret", "", "STAFF", time.Hour)
	assert.Error(t, err)
	_, err = NewAccessToken("secret", "staff-4", "STAFF", 0)
	assert.Error(t, err)
}
