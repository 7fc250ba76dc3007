package ports

import (
	"context"

	"github.com/opratem/schoolems/internal/core/domain"
)

// UserService exposes the profile of the authenticated account.
type UserService interface {
	Profile(ctx context.Context, username string) (*domain.User, error)
	// UpdateProfile changes the contact email. An empty value clears it.
	UpdateProfile(ctx context.Context, username, email string) (*domain.User, error)
}
