package ports

import (
	"context"

	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

// AuthService verifies credentials and resolves the user behind a session.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.User, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}
