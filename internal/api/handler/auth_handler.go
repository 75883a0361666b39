package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tsiemasilo/tendermanagement/internal/api/metrics"
	"github.com/tsiemasilo/tendermanagement/internal/api/session"
	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
	"github.com/tsiemasilo/tendermanagement/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	sessions    *session.Manager
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, sessions *session.Manager, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, log: log}
}

// Login verifies credentials and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		} else {
			metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	if _, err := h.sessions.Start(ctx, c.Response(), user.ID); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, user)
}

// Logout ends the current session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200   {object}  messageResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.Destroy(c.Request().Context(), c.Response(), c.Request()); err != nil {
		h.log.Error().Err(err).Msg("logout failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to logout").SetInternal(err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// Me returns the signed-in user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200   {object}  domain.User
// @Failure      401   {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	s, ok := session.From(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), s.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}
