package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
	"github.com/tsiemasilo/tendermanagement/internal/core/ports"
)

// PasswordCost is the bcrypt work factor applied to stored passwords.
const PasswordCost = 10

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// AuthService implements credential checks against the user repository.
type AuthService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewAuthService(users ports.UserRepository, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

// Login returns the user owning the credentials. An unknown username and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Info().Str("username", username).Msg("login rejected: unknown user")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Info().Str("username", username).Msg("login rejected: bad password")
		return nil, domain.ErrInvalidCredentials
	}

	s.logger.Info().Str("user_id", user.ID).Msg("login succeeded")
	return user, nil
}

// CurrentUser resolves the account a session points at.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.users.Get(ctx, userID)
}

// hashPassword rejects passwords bcrypt would refuse as a field error on
// "password".
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.NewValidationError(domain.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes),
		})
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
