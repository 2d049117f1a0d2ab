package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/salescrm/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "salescrm-test",
	})
}

func newTestSubject() Subject {
	return Subject{
		UserID: uuid.New(),
		Email:  "ana.torres@crm.pe",
		Name:   "Ana Torres",
		Role:   "vendedor",
	}
}

func TestNewJWTService_RefreshSecretFallback(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "only-one-secret-for-both-tokens!!"})
	assert.Equal(t, svc.accessSecret, svc.refreshSecret)
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	sub := newTestSubject()

	pair, err := svc.GenerateTokenPair(sub)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sub.UserID.String(), claims.UserID)
	assert.Equal(t, sub.Email, claims.Email)
	assert.Equal(t, sub.Name, claims.Name)
	assert.Equal(t, "vendedor", claims.Role)
	assert.NotEmpty(t, claims.ID)

	id, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, sub.UserID, id)
	assert.InDelta(t, 15*time.Minute, claims.GetRemainingTTL(), float64(5*time.Second))
	assert.False(t, claims.GetIssuedAtTime().IsZero())
}

func TestValidateRefreshToken(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(newTestSubject())
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.TokenType)
	assert.Empty(t, claims.Email)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "access token is signed with another secret")

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_Errors(t *testing.T) {
	svc := newTestJWTService()
	sub := newTestSubject()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars",
			AccessTokenExpiration: -time.Minute,
		})
		pair, err := expired.GenerateTokenPair(sub)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong type", func(t *testing.T) {
		claims := svc.claims(sub, TokenTypeRefresh, time.Now(), time.Hour)
		token, err := svc.sign(claims, svc.accessSecret)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("missing role", func(t *testing.T) {
		noRole := sub
		noRole.Role = ""
		token, err := svc.sign(svc.claims(noRole, TokenTypeAccess, time.Now(), time.Hour), svc.accessSecret)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrMissingRole)
	})

	t.Run("other signing method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, svc.claims(sub, TokenTypeAccess, time.Now(), time.Hour))
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
