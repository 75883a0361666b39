package ports

import (
	"context"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
//
// Lookups report absence with domain.ErrUserNotFound. Create reports a taken
// username with domain.ErrUsernameTaken.
type UserRepository interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	// Delete succeeds when no user has the id.
	Delete(ctx context.Context, id string) error
}
