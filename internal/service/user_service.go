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

// UserService coordina el registro y la lectura de usuarios.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
	hasher *PasswordHasher
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, hasher *PasswordHasher) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		logger: logger,
		users:  users,
		hasher: hasher,
	}
}

// Register valida el input, verifica unicidad, hashea y persiste.
// Devuelve *ValidationError para errores de input o username duplicado.
func (s *UserService) Register(ctx context.Context, input RegistrationInput) (domain.User, error) {
	if s.users == nil || s.hasher == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	if verr := validateRegistration(input); verr != nil {
		return domain.User{}, verr
	}

	username, _ := decodeString(input[fieldUsername])
	password, _ := decodeString(input[fieldPassword])
	fullname, _ := decodeString(input[fieldFullname])

	// Atajo para un mensaje amigable; la garantia real es el indice unico del store.
	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return domain.User{}, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return domain.User{}, newDuplicateUsernameError()
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.users.Create(ctx, domain.User{
		Username:     username,
		Fullname:     trimSpace(fullname),
		PasswordHash: digest,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			s.logger.Info("username taken during create", zap.String("username", username))
			return domain.User{}, newDuplicateUsernameError()
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	return s.users.GetByID(ctx, strings.TrimSpace(id))
}
