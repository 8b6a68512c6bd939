package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"microblog/internal/service"
)

// UserHandler bundles user HTTP handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateProfileRequest represents a profile update request.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SetPasswordRequest represents a password change request.
type SetPasswordRequest struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} model.User
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	user, err := h.svc.Get(c.Request().Context(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update a user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateProfileRequest true "Profile data"
// @Success 200 {object} model.User
// @Failure 403 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	actor, err := actingUser(c, h.svc)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.svc.UpdateProfile(c.Request().Context(), actor, uint(id), req.Name, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// SetPassword godoc
// @Summary Change the acting user's password
// @Tags users
// @Accept json
// @Produce json
// @Param request body SetPasswordRequest true "New password"
// @Success 200 {object} map[string]string
// @Failure 422 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /users/password [put]
func (h *UserHandler) SetPassword(c echo.Context) error {
	actor, err := actingUser(c, h.svc)
	if err != nil {
		return err
	}

	var req SetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.svc.SetPassword(c.Request().Context(), actor.ID, req.Password, req.PasswordConfirmation); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
}

// DeleteUser godoc
// @Summary Delete a user and everything they own
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	actor, err := actingUser(c, h.svc)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.svc.Destroy(c.Request().Context(), actor, uint(id)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "user deleted"})
}

// Remember godoc
// @Summary Issue a persistent-login token for the acting user
// @Tags users
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /users/remember [post]
func (h *UserHandler) Remember(c echo.Context) error {
	actor, err := actingUser(c, h.svc)
	if err != nil {
		return err
	}

	token, err := h.svc.Remember(c.Request().Context(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"remember_token": token})
}

// Forget godoc
// @Summary Drop the acting user's persistent-login token
// @Tags users
// @Produce json
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /users/remember [delete]
func (h *UserHandler) Forget(c echo.Context) error {
	actor, err := actingUser(c, h.svc)
	if err != nil {
		return err
	}

	if err := h.svc.Forget(c.Request().Context(), actor.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "forgotten"})
}
