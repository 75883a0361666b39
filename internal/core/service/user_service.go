package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
	"github.com/tsiemasilo/tendermanagement/internal/core/ports"
)

// UserService implements account administration.
type UserService struct {
	repo   ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.Get(ctx, id)
}

// Create checks the username is free, hashes the password and stores the
// account. The repository's unique constraint still guards concurrent inserts.
func (s *UserService) Create(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	if err := s.ensureUsernameFree(ctx, input.Username, ""); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     input.Username,
		PasswordHash: hash,
		IsAdmin:      input.IsAdmin,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("username", created.Username).Bool("is_admin", created.IsAdmin).Msg("user created")
	return created, nil
}

// Update applies a partial change. The password is rehashed only when a new
// one is supplied.
func (s *UserService) Update(ctx context.Context, id string, input ports.UpdateUserInput) (*domain.User, error) {
	if input.Username != nil {
		if err := s.ensureUsernameFree(ctx, *input.Username, id); err != nil {
			return nil, err
		}
	}

	patch := domain.UserPatch{
		Username: input.Username,
		IsAdmin:  input.IsAdmin,
	}
	if input.Password != nil {
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", id).Bool("password_changed", input.Password != nil).Msg("user updated")
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// EnsureAdmin creates an admin account with the given credentials unless the
// username is already taken. Used to seed a fresh database.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return false, err
	}

	_, err = s.Create(ctx, ports.CreateUserInput{Username: username, Password: password, IsAdmin: true})
	if errors.Is(err, domain.ErrUsernameTaken) {
		return false, nil
	}
	return err == nil, err
}

// ensureUsernameFree fails with ErrUsernameTaken when another account than
// selfID already uses username.
func (s *UserService) ensureUsernameFree(ctx context.Context, username, selfID string) error {
	existing, err := s.repo.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == selfID:
		return nil
	default:
		return domain.ErrUsernameTaken
	}
}
