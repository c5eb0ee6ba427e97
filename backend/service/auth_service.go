package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mealprep/backend/common"
	"mealprep/backend/model"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer        = "mealprep"
	accessTokenTTL     = 7 * 24 * time.Hour
	refreshTokenTTL    = 30 * 24 * time.Hour
	revokedTokenMinTTL = time.Minute
)

// ErrTokenRevoked is returned for tokens invalidated by logout.
var ErrTokenRevoked = errors.New("token revoked")

type JWTClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     int    `json:"role"`
	jwt.RegisteredClaims
}

func newClaims(user *model.User, ttl time.Duration) JWTClaims {
	now := time.Now()
	return JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   user.OwnerKey(),
		},
	}
}

func sign(claims JWTClaims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parse(tokenString, secret string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GenerateToken issues an access token for user.
func GenerateToken(user *model.User) (string, error) {
	return sign(newClaims(user, accessTokenTTL), common.JWTSecret)
}

// GenerateRefreshToken issues a long-lived token signed with the refresh secret.
func GenerateRefreshToken(user *model.User) (string, error) {
	return sign(newClaims(user, refreshTokenTTL), common.JWTRefreshSecret)
}

func ValidateToken(tokenString string) (*JWTClaims, error) {
	return parse(tokenString, common.JWTSecret)
}

func ValidateRefreshToken(tokenString string) (*JWTClaims, error) {
	return parse(tokenString, common.JWTRefreshSecret)
}

// RefreshToken exchanges a valid, unrevoked refresh token for a new access token.
func RefreshToken(refreshToken string) (string, error) {
	claims, err := ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}
	if IsTokenRevoked(context.Background(), refreshToken) {
		return "", ErrTokenRevoked
	}
	user := &model.User{Username: claims.Username, Role: claims.Role}
	user.ID = claims.UserID
	return GenerateToken(user)
}

// RevokeToken blacklists a token until it would have expired. Without redis
// it is a no-op and tokens stay valid until expiry.
func RevokeToken(ctx context.Context, tokenString string, claims *JWTClaims) error {
	if !common.RedisEnabled {
		return nil
	}
	ttl := revokedTokenMinTTL
	if claims != nil && claims.ExpiresAt != nil {
		if left := time.Until(claims.ExpiresAt.Time); left > ttl {
			ttl = left
		}
	}
	return common.BlacklistToken(ctx, tokenString, ttl)
}

func IsTokenRevoked(ctx context.Context, tokenString string) bool {
	if !common.RedisEnabled {
		return false
	}
	return common.IsTokenBlacklisted(ctx, tokenString)
}
