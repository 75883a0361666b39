package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/tsiemasilo/tendermanagement/internal/api/session"
	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
	"github.com/tsiemasilo/tendermanagement/internal/core/ports"
)

// UserKey is where RequireAdmin stores the resolved *domain.User.
const UserKey = "user"

// RequireAdmin lets through only sessions whose user still exists and is an
// admin. The account is re-read on every request so a revoked role takes
// effect immediately.
func RequireAdmin(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := session.From(c)
			if !ok {
				return domain.ErrUnauthenticated
			}

			user, err := auth.CurrentUser(c.Request().Context(), s.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return domain.ErrForbidden
				}
				return err
			}
			if !user.IsAdmin {
				return domain.ErrForbidden
			}

			c.Set(UserKey, user)
			return next(c)
		}
	}
}
