package handler

import (
	"net/http"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"microblog/internal/auth"
	"microblog/internal/errors"
	"microblog/internal/model"
	"microblog/internal/service"
)

// actingUser resolves the acting user from the verified JWT. Services take
// the actor explicitly, so every secured handler goes through here.
func actingUser(c echo.Context, users service.UserService) (*model.User, error) {
	token, ok := c.Get("user").(*jwtv5.Token)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	user, err := users.Get(c.Request().Context(), claims.UserID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown user")
	}
	return user, nil
}

// respondError maps a domain error onto the standard error payload.
func respondError(c echo.Context, err error) error {
	he := errors.MapErrorToHTTP(err)
	return c.JSON(he.StatusCode, he.ToErrorResponse())
}
