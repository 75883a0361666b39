package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tsiemasilo/tendermanagement/internal/api/session"
	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

// Sessions loads the session named by the request cookie, attaches it to the
// context and slides its expiry. Requests without a live session pass through
// unauthenticated.
func Sessions(m *session.Manager, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			s, err := m.Load(ctx, c.Request())
			switch {
			case errors.Is(err, domain.ErrSessionNotFound):
				return next(c)
			case err != nil:
				log.Warn().Err(err).Str("path", c.Path()).Msg("session lookup failed")
				return next(c)
			}

			if err := m.Refresh(ctx, c.Response(), s); err != nil {
				log.Warn().Err(err).Str("session_id", s.ID).Msg("session refresh failed")
			}
			c.Set(session.ContextKey, s)
			return next(c)
		}
	}
}

// RequireAuth rejects requests that carry no session.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := session.From(c); !ok {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}
