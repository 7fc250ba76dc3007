package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/opratem/schoolems/internal/api/metrics"
	"github.com/opratem/schoolems/internal/core/ports"
)

// Context keys populated by Authenticate.
const (
	ContextKeyUsername   = "username"
	ContextKeyRoles      = "roles"
	ContextKeyEmployeeID = "employee_id"
	ContextKeyToken      = "token"
)

// Authenticate resolves bearer credentials when the request carries any.
// Missing, malformed, expired or revoked tokens never raise here — the
// request proceeds anonymously and RequireAuth/RequireRoles deny later.
func Authenticate(tokens ports.TokenService, revoker ports.TokenRevoker, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// idempotent re-entry: identity already resolved
			if username, ok := c.Get(ContextKeyUsername).(string); ok && username != "" {
				return next(c)
			}

			raw, ok := bearerToken(c.Request())
			if !ok {
				return next(c)
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				log.Debug().Err(err).Msg("bearer token rejected")
				return next(c)
			}

			// Signature and expiry hold; the shared revocation store gets
			// the last word. A store outage fails open so an outage cannot
			// lock every user out.
			if revoker != nil {
				revoked, err := revoker.IsRevoked(c.Request().Context(), raw)
				if err != nil {
					log.Warn().Err(err).Msg("revocation check failed, accepting token")
				} else if revoked {
					log.Debug().Str("username", claims.Subject).Msg("revoked token rejected")
					return next(c)
				}
			}

			c.Set(ContextKeyUsername, claims.Subject)
			c.Set(ContextKeyRoles, claims.Roles)
			c.Set(ContextKeyEmployeeID, claims.EmployeeID)
			c.Set(ContextKeyToken, raw)

			return next(c)
		}
	}
}

// RequireAuth denies anonymous requests with 401.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, _ := c.Get(ContextKeyUsername).(string)
			if username == "" {
				metrics.AccessDenialsTotal.WithLabelValues("unauthorized").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
