package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opratem/schoolems/internal/api/metrics"
	"github.com/opratem/schoolems/internal/core/domain"
)

// RequireRoles enforces role-based access control: anonymous requests get
// 401, authenticated requests whose role set does not intersect the allowed
// set get 403.
func RequireRoles(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, _ := c.Get(ContextKeyUsername).(string)
			if username == "" {
				metrics.AccessDenialsTotal.WithLabelValues("unauthorized").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			roles, _ := c.Get(ContextKeyRoles).([]string)
			for _, role := range roles {
				if _, ok := allowed[role]; ok {
					return next(c)
				}
			}

			metrics.AccessDenialsTotal.WithLabelValues("forbidden").Inc()
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}
