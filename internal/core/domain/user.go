package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is one of the closed set of access roles. New roles are introduced by
// the bootstrap step only, never by end users.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// AllRoles is the complete role set seeded at startup.
var AllRoles = []Role{RoleAdmin, RoleManager, RoleEmployee}

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrWeakPassword = errors.New("password does not meet minimum length")
var ErrUnknownRole = errors.New("unknown role")
var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

// ParseRole maps a free-form role name onto the closed set.
func ParseRole(name string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(name))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleManager:
		return RoleManager, nil
	case RoleEmployee:
		return RoleEmployee, nil
	}
	return "", ErrUnknownRole
}

// User models an account that can authenticate. The username is the single
// login key; email is optional and only drives the password-reset flow.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"-"`
	Roles        []Role `json:"roles"`
	EmployeeID   string `json:"employee_id,omitempty"`

	// Single-use password-reset token. Both fields are cleared together
	// when the token is consumed.
	ResetToken       string    `json:"-"`
	ResetTokenExpiry time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(r Role) bool {
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// PrimaryRole returns the first assigned role, used in identity summaries.
func (u *User) PrimaryRole() Role {
	if len(u.Roles) == 0 {
		return ""
	}
	return u.Roles[0]
}

// RoleNames returns the role set as plain strings for token claims.
func (u *User) RoleNames() []string {
	names := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		names[i] = string(r)
	}
	return names
}
