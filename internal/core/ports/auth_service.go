package ports

import (
	"context"
	"time"

	"github.com/opratem/schoolems/internal/core/domain"
)

// RegisterEmployeeInput carries the optional HR record created and linked
// during registration.
type RegisterEmployeeInput struct {
	EmployeeID  string
	Name        string
	Department  string
	Position    string
	ContactInfo string
	StartDate   time.Time
}

// RegisterInput carries all data needed to create a new account.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	// Roles is a set of role names; empty means the EMPLOYEE default.
	Roles []string
	// Employee, when present (name + employee id at minimum), is created and
	// linked atomically with the account.
	Employee *RegisterEmployeeInput
}

// AuthService defines the authentication use cases.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Register(ctx context.Context, input RegisterInput) (string, *domain.User, error)
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error
	// InitiatePasswordReset never reveals whether the address has an account;
	// a non-nil error means the store itself failed.
	InitiatePasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	// Logout revokes the presented token for its remaining lifetime.
	Logout(ctx context.Context, token string) error
}
