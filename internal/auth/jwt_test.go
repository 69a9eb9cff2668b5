package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func newTestTokenService() *TokenService {
	return NewTokenService(testSecret)
}

func signToken(t *testing.T, secret, userID string, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   userID,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestTokenService_Validate_Valid(t *testing.T) {
	token := signToken(t, testSecret, "shopper@example.com", time.Now().Add(15*time.Minute))

	claims, err := newTestTokenService().Validate(token)

	require.NoError(t, err)
	assert.Equal(t, "shopper@example.com", claims.UserID)
	assert.Equal(t, "shopper@example.com", claims.Subject)
}

func TestTokenService_Validate_Expired(t *testing.T) {
	token := signToken(t, testSecret, "user-123", time.Now().Add(-time.Hour))

	_, err := newTestTokenService().Validate(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenService_Validate_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", "user-123", time.Now().Add(time.Minute))

	_, err := newTestTokenService().Validate(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Validate_Malformed(t *testing.T) {
	_, err := newTestTokenService().Validate("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Validate_WrongAlgorithm(t *testing.T) {
	claims := Claims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestTokenService().Validate(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Validate_MissingUserID(t *testing.T) {
	token := signToken(t, testSecret, "", time.Now().Add(time.Minute))

	_, err := newTestTokenService().Validate(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}
