package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789abcdef0123456789"

func TestTokenManager(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		tm := NewTokenManager(testSecret)

		token, err := tm.GenerateAccessToken(42, "rita@example.com", []string{"renter"})
		require.NoError(t, err)

		claims, err := tm.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, int32(42), claims.UserID)
		assert.Equal(t, TokenTypeAccess, claims.Type)
		assert.Equal(t, "42", claims.Subject)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("Expired", func(t *testing.T) {
		tm := NewTokenManager(testSecret).(*tokenManager)
		tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := tm.GenerateAccessToken(42, "", nil)
		require.NoError(t, err)

		_, err = NewTokenManager(testSecret).ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := NewTokenManager(testSecret).GenerateAccessToken(42, "", nil)
		require.NoError(t, err)

		_, err = NewTokenManager("another-secret-0123456789abcdef0123").ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Subject only", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub":  "7",
			"type": "access",
			"exp":  time.Now().Add(time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		got, err := NewTokenManager(testSecret).ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, int32(7), got.UserID)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := NewTokenManager(testSecret).ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
