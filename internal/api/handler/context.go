package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/tsiemasilo/tendermanagement/internal/api/session"
	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
)

// ctxSession returns the session attached by the session middleware. Routes
// behind RequireAuth always have one.
func ctxSession(c echo.Context) (*domain.Session, error) {
	s, ok := session.From(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return s, nil
}
