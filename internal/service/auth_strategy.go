package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"noteful-api/internal/domain"
	"noteful-api/internal/repository"
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Credentials agrupa lo que una estrategia puede necesitar de un request.
type Credentials struct {
	Username    string
	Password    string
	BearerToken string
}

// Principal es la identidad autenticada que queda en el contexto del request.
type Principal = domain.UserClaim

// AuthStrategy resuelve un Principal o rechaza. Ninguna implementacion muta estado.
type AuthStrategy interface {
	Authenticate(ctx context.Context, creds Credentials) (Principal, error)
}

// CredentialStrategy valida username + password contra el store.
type CredentialStrategy struct {
	logger *zap.Logger
	users  repository.UserRepository
	hasher *PasswordHasher
}

func NewCredentialStrategy(logger *zap.Logger, users repository.UserRepository, hasher *PasswordHasher) *CredentialStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialStrategy{logger: logger, users: users, hasher: hasher}
}

func (s *CredentialStrategy) Authenticate(ctx context.Context, creds Credentials) (Principal, error) {
	if creds.Username == "" || creds.Password == "" {
		return Principal{}, ErrMissingCredentials
	}
	user, err := s.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Debug("login rejected", zap.String("reason", "unknown username"))
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, fmt.Errorf("lookup user: %w", err)
	}
	ok, err := s.hasher.Verify(creds.Password, user.PasswordHash)
	if err != nil {
		return Principal{}, err
	}
	if !ok {
		s.logger.Debug("login rejected", zap.String("reason", "bad password"), zap.String("user_id", user.ID))
		return Principal{}, ErrUnauthorized
	}
	return user.Claim(), nil
}

// TokenStrategy valida un bearer token con el JWTService.
type TokenStrategy struct {
	logger *zap.Logger
	tokens *JWTService
}

func NewTokenStrategy(logger *zap.Logger, tokens *JWTService) *TokenStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenStrategy{logger: logger, tokens: tokens}
}

func (s *TokenStrategy) Authenticate(_ context.Context, creds Credentials) (Principal, error) {
	token := strings.TrimSpace(creds.BearerToken)
	if token == "" {
		return Principal{}, ErrUnauthorized
	}
	claim, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return Principal{}, ErrUnauthorized
	}
	return claim, nil
}
