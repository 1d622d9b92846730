package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang-stock-advisor/internal/dashboard/dto"

	"github.com/labstack/echo/v4"
)

// BearerAuth guards mutating routes with a static bearer secret.
func BearerAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
			}
			return next(c)
		}
	}
}
