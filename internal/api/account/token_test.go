package account

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-account-api/config"
	"github.com/FACorreiaa/go-account-api/internal/types"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "test-issuer",
		Audience:  "test-audience",
		TokenTTL:  time.Hour,
	}
}

func testUser() *types.User {
	return &types.User{
		ID:       uuid.New(),
		Name:     "Ann",
		Email:    "ann@x.com",
		Role:     "user",
		IsActive: true,
	}
}

func TestIssueAndVerifyToken(t *testing.T) {
	cfg := testJWTConfig()
	user := testUser()

	token, err := IssueToken(cfg, user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, cfg.Issuer, claims.Issuer)
}

func TestVerifyTokenFailures(t *testing.T) {
	cfg := testJWTConfig()
	user := testUser()

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := IssueToken(cfg, user)
		require.NoError(t, err)

		badCfg := cfg
		badCfg.SecretKey = "other-secret"
		_, err = VerifyToken(badCfg, token)
		assert.ErrorIs(t, err, types.ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		expiredCfg := cfg
		expiredCfg.TokenTTL = -time.Minute
		token, err := IssueToken(expiredCfg, user)
		require.NoError(t, err)

		_, err = VerifyToken(cfg, token)
		assert.ErrorIs(t, err, types.ErrInvalidToken)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		otherIssuer := cfg
		otherIssuer.Issuer = "someone-else"
		token, err := IssueToken(otherIssuer, user)
		require.NoError(t, err)

		_, err = VerifyToken(cfg, token)
		assert.ErrorIs(t, err, types.ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := VerifyToken(cfg, "not.a.token")
		assert.ErrorIs(t, err, types.ErrInvalidToken)
	})

	t.Run("WrongSigningMethod", func(t *testing.T) {
		// Token signed with "none" must never verify.
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, types.Claims{
			UserID: user.ID.String(),
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    cfg.Issuer,
				Audience:  jwt.ClaimStrings{cfg.Audience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = VerifyToken(cfg, token)
		assert.ErrorIs(t, err, types.ErrInvalidToken)
	})
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	cfg := testJWTConfig()
	cfg.SecretKey = ""
	_, err := IssueToken(cfg, testUser())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, types.ErrInvalidToken))
}
