package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestIsTokenValid(t *testing.T) {
	t.Run("future expiry is valid", func(t *testing.T) {
		assert.True(t, IsTokenValid(makeToken(t, time.Now().Add(time.Hour))))
	})

	t.Run("expiry ten seconds in the past is invalid", func(t *testing.T) {
		assert.False(t, IsTokenValid(makeToken(t, time.Now().Add(-10*time.Second))))
	})

	t.Run("malformed token is invalid, not an error", func(t *testing.T) {
		assert.False(t, IsTokenValid("not-a-jwt"))
		assert.False(t, IsTokenValid(""))
	})

	t.Run("token without expiry claim is invalid", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		assert.False(t, IsTokenValid(signed))
	})
}
