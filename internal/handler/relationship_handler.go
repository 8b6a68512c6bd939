package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"microblog/internal/service"
)

// RelationshipHandler bundles follow-graph HTTP handlers.
type RelationshipHandler struct {
	relationships service.RelationshipService
	users         service.UserService
}

// NewRelationshipHandler creates a new relationship handler.
func NewRelationshipHandler(relationships service.RelationshipService, users service.UserService) *RelationshipHandler {
	return &RelationshipHandler{relationships: relationships, users: users}
}

// Follow godoc
// @Summary Follow a user
// @Tags relationships
// @Produce json
// @Param id path int true "User ID to follow"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/follow [post]
func (h *RelationshipHandler) Follow(c echo.Context) error {
	actor, err := actingUser(c, h.users)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.relationships.Follow(c.Request().Context(), actor, uint(id)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "following"})
}

// Unfollow godoc
// @Summary Unfollow a user
// @Tags relationships
// @Produce json
// @Param id path int true "User ID to unfollow"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /users/{id}/follow [delete]
func (h *RelationshipHandler) Unfollow(c echo.Context) error {
	actor, err := actingUser(c, h.users)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.relationships.Unfollow(c.Request().Context(), actor, uint(id)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "unfollowed"})
}

// Following godoc
// @Summary Users this user follows
// @Tags relationships
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} model.User
// @Router /users/{id}/following [get]
func (h *RelationshipHandler) Following(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	users, err := h.relationships.Following(c.Request().Context(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Followers godoc
// @Summary Users following this user
// @Tags relationships
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} model.User
// @Router /users/{id}/followers [get]
func (h *RelationshipHandler) Followers(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	users, err := h.relationships.Followers(c.Request().Context(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}
