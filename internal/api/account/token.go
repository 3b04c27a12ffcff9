package account

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FACorreiaa/go-account-api/config"
	"github.com/FACorreiaa/go-account-api/internal/api"
	"github.com/FACorreiaa/go-account-api/internal/types"
)

// IssueToken produces a signed bearer token bound to the user. The token
// carries no server-side state; validity is a pure function of signature
// and expiry at verification time.
func IssueToken(cfg config.JWTConfig, user *types.User) (string, error) {
	if cfg.SecretKey == "" {
		return "", errors.New("JWT secret key is not configured")
	}

	now := time.Now()
	claims := types.Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature integrity, expiry, issuer and audience.
// Any failure is reported as types.ErrInvalidToken.
func VerifyToken(cfg config.JWTConfig, tokenString string) (*types.Claims, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.SecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, types.ErrInvalidToken
	}

	if claims.ExpiresAt == nil || time.Now().Unix() > claims.ExpiresAt.Unix() {
		return nil, fmt.Errorf("%w: token has expired", types.ErrInvalidToken)
	}
	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("%w: invalid token issuer", types.ErrInvalidToken)
	}
	if cfg.Audience != "" && !api.VerifyAudience(claims.Audience, cfg.Audience) {
		return nil, fmt.Errorf("%w: invalid token audience", types.ErrInvalidToken)
	}

	return claims, nil
}
