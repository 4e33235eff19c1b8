// Package service issues bearer tokens for the password grant the original
// client uses. Token mechanics live in internal/jwt_token; this layer only
// verifies credentials and shapes the response.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"carepath/internal/auth"
	dErrors "carepath/pkg/domain-errors"
	"carepath/pkg/platform/sentinel"
)

// TokenIssuer abstracts JWT creation so tests can substitute a fake.
type TokenIssuer interface {
	GenerateAccessToken(username string, expiresIn time.Duration) (string, error)
}

// Service validates credentials and issues access tokens.
type Service struct {
	users    auth.UserStore
	issuer   TokenIssuer
	tokenTTL time.Duration
	logger   *slog.Logger
}

// New constructs the auth service.
func New(users auth.UserStore, issuer TokenIssuer, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{users: users, issuer: issuer, tokenTTL: tokenTTL, logger: logger}
}

// Login verifies the username/password pair and returns a bearer token.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*auth.TokenResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "incorrect username or password")
		}
		s.logger.ErrorContext(ctx, "user lookup failed", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to authenticate")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "incorrect username or password")
	}

	token, err := s.issuer.GenerateAccessToken(user.Username, s.tokenTTL)
	if err != nil {
		s.logger.ErrorContext(ctx, "token generation failed", "error", err)
		return nil, dErrors.New(dErrors.CodeInternal, "failed to issue token")
	}

	return &auth.TokenResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
	}, nil
}

// SeedUser hashes the given password and stores the credential record. Used
// at startup to provision the configured login.
func SeedUser(ctx context.Context, store auth.UserStore, username, password, passwordHash string) error {
	hash := passwordHash
	if hash == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		hash = string(hashed)
	}
	return store.Save(ctx, &auth.User{Username: username, PasswordHash: hash})
}
