package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/opratem/schoolems/internal/core/domain"
	"github.com/opratem/schoolems/internal/core/ports"
)

const (
	minPasswordLength = 6
	resetTokenBytes   = 32

	defaultResetTokenTTL = time.Hour
	defaultHashSlots     = 8
)

// AuthConfig carries the tunables of the authentication core.
type AuthConfig struct {
	// ResetTokenTTL bounds the lifetime of a password-reset token.
	ResetTokenTTL time.Duration
	// ResetBaseURL is the link prefix mailed to the user.
	ResetBaseURL string
	// MaxConcurrentHashes caps in-flight bcrypt work so a burst of logins
	// cannot starve unrelated requests.
	MaxConcurrentHashes int64
}

// AuthService implements login, registration and the password lifecycle.
type AuthService struct {
	users     ports.UserRepository
	employees ports.EmployeeRepository
	tokens    ports.TokenService
	revoker   ports.TokenRevoker
	hasher    ports.PasswordHasher
	mail      ports.MailQueue

	resetTTL     time.Duration
	resetBaseURL string
	hashSem      *semaphore.Weighted
	log          zerolog.Logger
	now          func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	employees ports.EmployeeRepository,
	tokens ports.TokenService,
	revoker ports.TokenRevoker,
	hasher ports.PasswordHasher,
	mail ports.MailQueue,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTokenTTL
	}
	if cfg.MaxConcurrentHashes <= 0 {
		cfg.MaxConcurrentHashes = defaultHashSlots
	}
	return &AuthService{
		users:        users,
		employees:    employees,
		tokens:       tokens,
		revoker:      revoker,
		hasher:       hasher,
		mail:         mail,
		resetTTL:     cfg.ResetTokenTTL,
		resetBaseURL: cfg.ResetBaseURL,
		hashSem:      semaphore.NewWeighted(cfg.MaxConcurrentHashes),
		log:          log,
		now:          time.Now,
	}
}

// Login verifies credentials and issues a session token. Unknown usernames
// and wrong passwords produce the same failure so responses cannot be used
// to enumerate accounts; only debug logs keep the distinction.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug().Str("username", username).Msg("login attempt for unknown username")
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	ok, err := s.verify(ctx, password, user.PasswordHash)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		s.log.Debug().Str("username", username).Msg("login attempt with wrong password")
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("username", username).Msg("login succeeded")
	return token, user, nil
}

// Register creates an account, defaulting the role set to EMPLOYEE, and
// optionally creates and links an HR record in the same logical operation.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (string, *domain.User, error) {
	if input.Username == "" || input.Password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	if len(input.Password) < minPasswordLength {
		return "", nil, domain.ErrWeakPassword
	}

	roles, err := resolveRoles(input.Roles)
	if err != nil {
		return "", nil, err
	}

	hash, err := s.hash(ctx, input.Password)
	if err != nil {
		return "", nil, err
	}

	now := s.now().UTC()

	// The HR record is inserted first; if the account insert fails it is
	// deleted again so an Employee never exists linked to nothing it was
	// meant for.
	var employee *domain.Employee
	if emp := input.Employee; emp != nil && emp.Name != "" && emp.EmployeeID != "" {
		employee, err = s.employees.Insert(ctx, &domain.Employee{
			EmployeeID:  emp.EmployeeID,
			Name:        emp.Name,
			Department:  emp.Department,
			Position:    emp.Position,
			ContactInfo: emp.ContactInfo,
			StartDate:   emp.StartDate,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return "", nil, err
		}
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if employee != nil {
		user.EmployeeID = employee.ID
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if employee != nil {
			if delErr := s.employees.Delete(ctx, employee.ID); delErr != nil {
				s.log.Error().Err(delErr).Str("employee_id", employee.ID).
					Msg("failed to roll back employee after user create failure")
			}
		}
		return "", nil, err
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("username", created.Username).
		Strs("roles", created.RoleNames()).
		Msg("user registered")
	return token, created, nil
}

// ChangePassword swaps the stored hash after verifying the current password.
// It fails closed on unknown users, wrong current passwords and short new
// passwords, and never retains password history.
func (s *AuthService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	if username == "" || currentPassword == "" {
		return domain.ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return domain.ErrWeakPassword
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidCredentials
		}
		return err
	}

	ok, err := s.verify(ctx, currentPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug().Str("username", username).Msg("password change with wrong current password")
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hash(ctx, newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.UpdatedAt = s.now().UTC()
	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info().Str("username", username).Msg("password changed")
	return nil
}

// InitiatePasswordReset stores a fresh single-use token (overwriting any
// outstanding one) and queues the reset mail. Invalid addresses and unknown
// accounts return nil so the caller's answer stays uniform; only a store
// failure surfaces as an error.
func (s *AuthService) InitiatePasswordReset(ctx context.Context, email string) error {
	if email == "" || !strings.Contains(email, "@") {
		s.log.Debug().Msg("password reset requested for malformed address")
		return nil
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug().Str("email", email).Msg("password reset requested for unknown address")
			return nil
		}
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}

	now := s.now().UTC()
	user.ResetToken = token
	user.ResetTokenExpiry = now.Add(s.resetTTL)
	user.UpdatedAt = now
	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}

	// Delivery is best-effort: the token is already persisted, so a sink
	// failure is logged by the dispatcher and never fails this call.
	s.mail.Enqueue(ports.MailMessage{
		To:      user.Email,
		Subject: "Password Reset Request",
		Body: fmt.Sprintf(
			"To reset your password, open the link below (valid for %s):\n%s?token=%s",
			s.resetTTL, s.resetBaseURL, token,
		),
	})

	s.log.Info().Str("username", user.Username).Msg("password reset initiated")
	return nil
}

// ResetPassword consumes a reset token. On success the new hash is written
// and the token plus its expiry are cleared in the same update, so the token
// can never succeed twice.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.ErrResetTokenInvalid
	}
	if len(newPassword) < minPasswordLength {
		return domain.ErrWeakPassword
	}

	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrResetTokenInvalid
		}
		return err
	}

	if user.ResetTokenExpiry.IsZero() || !s.now().Before(user.ResetTokenExpiry) {
		return domain.ErrResetTokenInvalid
	}

	hash, err := s.hash(ctx, newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.ResetToken = ""
	user.ResetTokenExpiry = time.Time{}
	user.UpdatedAt = s.now().UTC()
	if _, err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info().Str("username", user.Username).Msg("password reset completed")
	return nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return err
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, token, ttl); err != nil {
		return err
	}

	s.log.Info().Str("username", claims.Subject).Msg("token revoked")
	return nil
}

// hash and verify gate bcrypt work behind the semaphore; bcrypt is slow by
// design and unbounded concurrency would starve unrelated requests.
func (s *AuthService) hash(ctx context.Context, plaintext string) (string, error) {
	if err := s.hashSem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer s.hashSem.Release(1)
	return s.hasher.Hash(plaintext)
}

func (s *AuthService) verify(ctx context.Context, plaintext, digest string) (bool, error) {
	if err := s.hashSem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer s.hashSem.Release(1)
	return s.hasher.Verify(plaintext, digest), nil
}

// resolveRoles maps requested role names onto the closed set, deduplicating
// and defaulting to EMPLOYEE when none are given.
func resolveRoles(names []string) ([]domain.Role, error) {
	if len(names) == 0 {
		return []domain.Role{domain.RoleEmployee}, nil
	}

	seen := make(map[domain.Role]struct{}, len(names))
	roles := make([]domain.Role, 0, len(names))
	for _, name := range names {
		role, err := domain.ParseRole(name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	return roles, nil
}

// generateResetToken returns a high-entropy single-use token.
func generateResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
