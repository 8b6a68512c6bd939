package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"microblog/internal/service"
)

// MicropostHandler bundles micropost HTTP handlers.
type MicropostHandler struct {
	posts service.MicropostService
	users service.UserService
}

// NewMicropostHandler creates a new micropost handler.
func NewMicropostHandler(posts service.MicropostService, users service.UserService) *MicropostHandler {
	return &MicropostHandler{posts: posts, users: users}
}

// CreateMicropostRequest represents a post creation request.
type CreateMicropostRequest struct {
	Content string `json:"content"`
	Picture string `json:"picture,omitempty"`
}

// CreateMicropost godoc
// @Summary Create a micropost owned by the acting user
// @Tags microposts
// @Accept json
// @Produce json
// @Param request body CreateMicropostRequest true "Post content"
// @Success 201 {object} model.Micropost
// @Failure 422 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /microposts [post]
func (h *MicropostHandler) CreateMicropost(c echo.Context) error {
	actor, err := actingUser(c, h.users)
	if err != nil {
		return err
	}

	var req CreateMicropostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	post, err := h.posts.AddPost(c.Request().Context(), actor, req.Content, req.Picture)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

// DeleteMicropost godoc
// @Summary Delete a micropost owned by the acting user
// @Tags microposts
// @Produce json
// @Param id path int true "Micropost ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /microposts/{id} [delete]
func (h *MicropostHandler) DeleteMicropost(c echo.Context) error {
	actor, err := actingUser(c, h.users)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.posts.RemovePost(c.Request().Context(), actor, uint(id)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "micropost deleted"})
}

// Feed godoc
// @Summary The acting user's feed, own posts plus followed users' posts
// @Tags microposts
// @Produce json
// @Success 200 {array} model.Micropost
// @Security BearerAuth
// @Router /feed [get]
func (h *MicropostHandler) Feed(c echo.Context) error {
	actor, err := actingUser(c, h.users)
	if err != nil {
		return err
	}

	posts, err := h.posts.FeedFor(c.Request().Context(), actor.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}

// UserMicroposts godoc
// @Summary A user's own posts, newest first
// @Tags microposts
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} model.Micropost
// @Router /users/{id}/microposts [get]
func (h *MicropostHandler) UserMicroposts(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	posts, err := h.posts.PostsBy(c.Request().Context(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, posts)
}
