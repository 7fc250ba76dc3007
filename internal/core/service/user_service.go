package service

import (
	"context"
	"strings"
	"time"

	"github.com/opratem/schoolems/internal/core/domain"
	"github.com/opratem/schoolems/internal/core/ports"
)

// UserProfileService serves the profile of the authenticated account.
type UserProfileService struct {
	users ports.UserRepository
	now   func() time.Time
}

func NewUserProfileService(users ports.UserRepository) *UserProfileService {
	return &UserProfileService{users: users, now: time.Now}
}

func (s *UserProfileService) Profile(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

// UpdateProfile changes the contact email. An empty value clears it; a
// non-empty value must at least look like an address.
func (s *UserProfileService) UpdateProfile(ctx context.Context, username, email string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if email != "" && !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidCredentials
	}

	user.Email = email
	user.UpdatedAt = s.now().UTC()
	return s.users.Update(ctx, user)
}
