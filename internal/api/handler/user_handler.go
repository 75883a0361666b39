package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tsiemasilo/tendermanagement/internal/api/metrics"
	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
	"github.com/tsiemasilo/tendermanagement/internal/core/ports"
)

// UserHandler serves the admin account endpoints.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /admin/users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /admin/users/:id.
//
// @Summary      Get a user
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /admin/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Create handles POST /admin/users.
//
// @Summary      Create a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "New account"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Router       /admin/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	metrics.UserMutationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, user)
}

// Update handles PUT /admin/users/:id. Absent fields are left unchanged.
//
// @Summary      Update a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	metrics.UserMutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /admin/users/:id. Admins cannot delete themselves.
//
// @Summary      Delete a user
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  deleteResponse
// @Failure      400  {object}  errorResponse
// @Router       /admin/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id == s.UserID {
		return domain.ErrSelfDelete
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	metrics.UserMutationsTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, deleteResponse{Message: "User deleted successfully", ID: id})
}
