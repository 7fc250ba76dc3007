package ports

import (
	"context"
	"time"

	"github.com/opratem/schoolems/internal/core/domain"
)

// TokenClaims is the decoded, already-validated content of a session token.
type TokenClaims struct {
	Subject    string
	Roles      []string
	EmployeeID string
	ExpiresAt  time.Time
}

// HasRole reports whether the claim set carries the given role.
func (c *TokenClaims) HasRole(role domain.Role) bool {
	for _, name := range c.Roles {
		if name == string(role) {
			return true
		}
	}
	return false
}

// TokenService issues and validates signed session tokens. Both operations
// are pure functions over the signing secret and the clock.
type TokenService interface {
	Issue(user *domain.User) (string, error)
	// Validate returns domain.ErrTokenMalformed, ErrTokenExpired or
	// ErrTokenSignatureInvalid on failure.
	Validate(token string) (*TokenClaims, error)
}

// TokenRevoker is the shared revocation store consulted after signature and
// expiry checks.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
