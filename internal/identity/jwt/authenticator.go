// Package jwt implements the identity.Authenticator using signed JWT access
// tokens and opaque refresh tokens persisted through the identity repository.
package jwt

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/atelier-cms/atelier/internal/domain"
	"github.com/atelier-cms/atelier/internal/identity"
	"github.com/atelier-cms/atelier/internal/rbac"
	"github.com/golang-jwt/jwt/v5"
)

// Config contains JWT authenticator settings.
type Config struct {
	SecretKey            string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// Authenticator issues HMAC-signed access tokens and rotated refresh tokens.
type Authenticator struct {
	config Config
	repo   identity.Repository
}

// NewAuthenticator creates a new JWT authenticator.
func NewAuthenticator(cfg Config, repo identity.Repository) *Authenticator {
	return &Authenticator{config: cfg, repo: repo}
}

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateTokens issues an access/refresh pair and persists the refresh token.
func (a *Authenticator) GenerateTokens(ctx context.Context, user *domain.User) (*identity.TokenPair, error) {
	accessToken, err := a.signAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := generateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	err = a.repo.SaveRefreshToken(ctx, &domain.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(a.config.RefreshTokenDuration),
	})
	if err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &identity.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccessToken parses and verifies an access token. The embedded role
// claim is re-validated through rbac.ParseRole, so a tampered or stale role
// string degrades to USER rather than escalating.
func (a *Authenticator) ValidateAccessToken(_ context.Context, token string) (string, domain.Role, error) {
	var claims accessClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.config.SecretKey), nil
	})
	if err != nil || !parsed.Valid {
		return "", "", identity.ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", "", identity.ErrInvalidToken
	}

	return claims.Subject, rbac.ParseRole(claims.Role), nil
}

// RefreshTokens rotates a refresh token: the presented token is deleted and
// a fresh pair is issued from the user's current role, so role changes take
// effect at the next refresh.
func (a *Authenticator) RefreshTokens(ctx context.Context, refreshToken string) (*identity.TokenPair, error) {
	stored, err := a.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, identity.ErrInvalidToken
	}
	if stored == nil || time.Now().After(stored.ExpiresAt) {
		return nil, identity.ErrInvalidToken
	}

	user, err := a.repo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, identity.ErrInvalidToken
	}

	if err := a.repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("delete refresh token: %w", err)
	}

	return a.GenerateTokens(ctx, user)
}

// RevokeRefreshToken deletes a refresh token. Unknown tokens are not an error.
func (a *Authenticator) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	err := a.repo.DeleteRefreshToken(ctx, refreshToken)
	if err != nil && !errors.Is(err, identity.ErrInvalidToken) {
		return err
	}
	return nil
}

func (a *Authenticator) signAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.AccessTokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.SecretKey))
}

func generateOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
