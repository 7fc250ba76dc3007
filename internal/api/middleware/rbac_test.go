package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/opratem/schoolems/internal/core/domain"
)

func runWithRoles(t *testing.T, roles []string, allowed ...domain.Role) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if roles != nil {
		c.Set(ContextKeyUsername, "alice")
		c.Set(ContextKeyRoles, roles)
	}

	mw := RequireRoles(allowed...)
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestRequireRoles_AnonymousIsUnauthorized(t *testing.T) {
	rec := runWithRoles(t, nil, domain.RoleAdmin)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRoles_InsufficientRoleIsForbidden(t *testing.T) {
	rec := runWithRoles(t, []string{string(domain.RoleEmployee)}, domain.RoleAdmin)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRoles_MatchingRolePasses(t *testing.T) {
	rec := runWithRoles(t, []string{string(domain.RoleManager)}, domain.RoleAdmin, domain.RoleManager)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoles_AnyRoleInSetSuffices(t *testing.T) {
	roles := []string{string(domain.RoleEmployee), string(domain.RoleAdmin)}
	rec := runWithRoles(t, roles, domain.RoleAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("a multi-role account with ADMIN must pass, got %d", rec.Code)
	}
}
