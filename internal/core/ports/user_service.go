package ports

import (
	"context"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

// CreateUserInput carries a new account as submitted by an admin. Password is
// plaintext; the service hashes it.
type CreateUserInput struct {
	Username string
	Password string
	IsAdmin  bool
}

// UpdateUserInput is a partial account update. A nil Password keeps the
// stored hash.
type UpdateUserInput struct {
	Username *string
	Password *string
	IsAdmin  *bool
}

// UserService defines the admin use cases for accounts.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
