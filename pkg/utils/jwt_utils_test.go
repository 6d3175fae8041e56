package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	ConfigureJWT("utils-test-secret", time.Hour)

	tok, expiresAt, err := GenerateAccessToken(12, "kasir", "STAFF")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, "kasir", claims.Username)
	assert.Equal(t, "STAFF", claims.Role)
}

func TestValidateTokenRejects(t *testing.T) {
	ConfigureJWT("utils-test-secret", time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredStr, err := expired.SignedString([]byte("utils-test-secret"))
	require.NoError(t, err)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer},
	})
	forgedStr, err := forged.SignedString([]byte("someone-else"))
	require.NoError(t, err)

	for name, tok := range map[string]string{"expired": expiredStr, "forged": forgedStr, "garbage": "abc.def.ghi"} {
		_, err := ValidateToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestTokenTTLFollowsConfiguration(t *testing.T) {
	ConfigureJWT("utils-test-secret", 90*time.Minute)
	assert.Equal(t, 90*time.Minute, TokenTTL())

	ConfigureJWT("", 0)
	assert.Equal(t, 90*time.Minute, TokenTTL())

	ConfigureJWT("utils-test-secret", time.Hour)
}
