package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opratem/schoolems/internal/api/middleware"
)

// ctxIdentity extracts the identity injected by the Authenticate middleware
// and fast-fails with 401 when the handler is reached without one (defence
// against a route registered without RequireAuth).
func ctxIdentity(c echo.Context) (username string, roles []string, err error) {
	username, _ = c.Get(middleware.ContextKeyUsername).(string)
	if username == "" {
		return "", nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	roles, _ = c.Get(middleware.ContextKeyRoles).([]string)
	return username, roles, nil
}
