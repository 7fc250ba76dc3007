package ports

import (
	"context"

	"github.com/opratem/schoolems/internal/core/domain"
)

// UserRepository defines the persistence boundary for accounts. Lookups are
// case-exact. Update is a whole-document write keyed by ID, so a password
// hash or reset token change on a single user is atomic.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByResetToken(ctx context.Context, token string) (*domain.User, error)
}
