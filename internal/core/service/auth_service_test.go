package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/opratem/schoolems/internal/core/domain"
	"github.com/opratem/schoolems/internal/core/ports"
)

// --- Stubs ---

type stubUserRepo struct {
	users      map[string]*domain.User // keyed by username
	createErr  error
	updateErr  error
	createdIDs int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	cp := *u
	cp.Roles = append([]domain.Role(nil), u.Roles...)
	return &cp
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.createdIDs++
	cp := cloneUser(user)
	cp.ID = "user_" + user.Username
	r.users[user.Username] = cp
	return cloneUser(cp), nil
}

func (r *stubUserRepo) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if _, exists := r.users[user.Username]; !exists {
		return nil, domain.ErrUserNotFound
	}
	r.users[user.Username] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByResetToken(ctx context.Context, token string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ResetToken != "" && u.ResetToken == token {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubEmployeeRepo struct {
	employees map[string]*domain.Employee
	insertErr error
	deleted   []string
}

func newStubEmployeeRepo() *stubEmployeeRepo {
	return &stubEmployeeRepo{employees: make(map[string]*domain.Employee)}
}

func (r *stubEmployeeRepo) Insert(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	cp := *e
	cp.ID = "emp_" + e.EmployeeID
	r.employees[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *stubEmployeeRepo) Update(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	if _, ok := r.employees[e.ID]; !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	cp := *e
	r.employees[e.ID] = &cp
	out := cp
	return &out, nil
}

func (r *stubEmployeeRepo) FindByID(ctx context.Context, id string) (*domain.Employee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *stubEmployeeRepo) FindAll(ctx context.Context) ([]domain.Employee, error) {
	out := make([]domain.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, *e)
	}
	return out, nil
}

func (r *stubEmployeeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.employees[id]; !ok {
		return domain.ErrEmployeeNotFound
	}
	delete(r.employees, id)
	r.deleted = append(r.deleted, id)
	return nil
}

// fakeHasher avoids real bcrypt work so tests stay fast.
type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (fakeHasher) Verify(plaintext, digest string) bool  { return digest == "hashed:"+plaintext }

type stubTokenService struct {
	validateFn func(token string) (*ports.TokenClaims, error)
}

func (s *stubTokenService) Issue(user *domain.User) (string, error) {
	return "token-for-" + user.Username, nil
}

func (s *stubTokenService) Validate(token string) (*ports.TokenClaims, error) {
	if s.validateFn != nil {
		return s.validateFn(token)
	}
	return nil, domain.ErrTokenMalformed
}

type stubRevoker struct {
	revoked map[string]time.Duration
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]time.Duration)}
}

func (r *stubRevoker) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	r.revoked[token] = ttl
	return nil
}

func (r *stubRevoker) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, ok := r.revoked[token]
	return ok, nil
}

type stubMailQueue struct {
	sent []ports.MailMessage
}

func (q *stubMailQueue) Enqueue(msg ports.MailMessage) {
	q.sent = append(q.sent, msg)
}

func newTestAuthService(users *stubUserRepo, employees *stubEmployeeRepo, mail *stubMailQueue) *AuthService {
	return NewAuthService(
		users, employees, &stubTokenService{}, newStubRevoker(), fakeHasher{}, mail,
		AuthConfig{ResetTokenTTL: time.Hour, ResetBaseURL: "http://localhost/reset"},
		zerolog.Nop(),
	)
}

func seedUser(t *testing.T, users *stubUserRepo, username, password, email string, roles ...domain.Role) *domain.User {
	t.Helper()
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleEmployee}
	}
	u, err := users.Create(context.Background(), &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hashed:" + password,
		Roles:        roles,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "alice", "secret1", "alice@example.com", domain.RoleAdmin)
	svc := newTestAuthService(users, newStubEmployeeRepo(), &stubMailQueue{})

	token, user, err := svc.Login(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "token-for-alice" {
		t.Fatalf("unexpected token %q", token)
	}
	if user.Username != "alice" || !user.HasRole(domain.RoleAdmin) {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestLogin_UnknownUserAndWrongPasswordSameFailure(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "alice", "secret1", "alice@example.com")
	svc := newTestAuthService(users, newStubEmployeeRepo(), &stubMailQueue{})

	_, _, errUnknown := svc.Login(context.Background(), "ghost", "whatever")
	_, _, errWrong := svc.Login(context.Background(), "alice", "wrong")

	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: got %v", errUnknown)
	}
	if !errors.Is(errWrong, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", errWrong)
	}
}

func TestLogin_EmptyCredentials(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), newStubEmployeeRepo(), &stubMailQueue{})

	if _, _, err := svc.Login(context.Background(), "", "pw"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("empty username: got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "alice", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("empty password: got %v", err)
	}
}

// --- Register ---

func TestRegister_DefaultsToEmployeeRole(t *testing.T) {
	users := newStubUserRepo()
	svc := newTestAuthService(users, newStubEmployeeRepo(), &stubMailQueue{})

	token, user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "bob",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a session token")
	}
	if len(user.Roles) != 1 || user.Roles[0] != domain.RoleEmployee {
		t.Fatalf("expected default EMPLOYEE role, got %v", user.Roles)
	}
	if stored := users.users["bob"]; stored.PasswordHash != "hashed:secret1" {
		t.Fatalf("password stored incorrectly: %q", stored.PasswordHash)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "bob", "secret1", "")
	svc := newTestAuthService(users, newStubEmployeeRepo(), &stubMailQueue{})

	_, _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "secret1"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegister_WeakPasswordRejectedWithoutSideEffects(t *testing.T) {
	users := newStubUserRepo()
	employees := newStubEmployeeRepo()
	svc := newTestAuthService(users, employees, &stubMailQueue{})

	_, _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob", Password: "short"})
	if !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if len(users.users) != 0 || len(employees.employees) != 0 {
		t.Fatalf("weak password must not create anything")
	}
}

func TestRegister_UnknownRole(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), newStubEmployeeRepo(), &stubMailQueue{})

	_, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "bob",
		Password: "secret1",
		Roles:    []string{"SUPERUSER"},
	})
	if !errors.Is(err, domain.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestRegister_CreatesAndLinksEmployee(t *testing.T) {
	users := newStubUserRepo()
	employees := newStubEmployeeRepo()
	svc := newTestAuthService(users, employees, &stubMailQueue{})

	_, user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "carol",
		Password: "secret1",
		Employee: &ports.RegisterEmployeeInput{
			EmployeeID: "E100",
			Name:       "Carol Diaz",
			Department: "Science",
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.EmployeeID == "" {
		t.Fatalf("expected user linked to employee record")
	}
	if _, err := employees.FindByID(context.Background(), user.EmployeeID); err != nil {
		t.Fatalf("linked employee missing: %v", err)
	}
}

func TestRegister_RollsBackEmployeeWhenUserCreateFails(t *testing.T) {
	users := newStubUserRepo()
	users.createErr = errors.New("write failed")
	employees := newStubEmployeeRepo()
	svc := newTestAuthService(users, employees, &stubMailQueue{})

	_, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "carol",
		Password: "secret1",
		Employee: &ports.RegisterEmployeeInput{EmployeeID: "E100", Name: "Carol Diaz"},
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(employees.employees) != 0 {
		t.Fatalf("employee record must be rolled back, still have %d", len(employees.employees))
	}
}

// --- ChangePassword ---

func TestChangePassword_Success(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "alice", "oldpass", "")
	svc := newTestAuthService(users, newStubEmployeeRepo(), &stubMailQueue{})

	if err := svc.ChangePassword(context.Background(), "alice", "oldpass", "newpass"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if users.users["alice"].PasswordHash != "hashed:newpass" {
		t.Fatalf("hash not updated")
	}
}

func TestChangePassword_WrongCurrentPassword(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "alice", "oldpass", "")
	svc := newTestAuthService(users, newStubEmployeeRepo(), &stubMailQueue{})

	err := svc.ChangePassword(context.Background(), "alice", "wrong", "newpass")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if users.users["alice"].PasswordHash != "hashed:oldpass" {
		t.Fatalf("hash must be untouched")
	}
}

func TestChangePassword_WeakNewPassword(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "alice", "oldpass", "")
	svc := newTestAuthService(users, newStubEmployeeRepo(), &stubMailQueue{})

	if err := svc.ChangePassword(context.Background(), "alice", "oldpass", "abc"); !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestChangePassword_UnknownUserLooksLikeWrongPassword(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), newStubEmployeeRepo(), &stubMailQueue{})

	err := svc.ChangePassword(context.Background(), "ghost", "pw", "newpass")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// --- Password reset flow ---

func TestInitiatePasswordReset_StoresTokenAndMailsLink(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "alice", "secret1", "alice@example.com")
	mail := &stubMailQueue{}
	svc := newTestAuthService(users, newStubEmployeeRepo(), mail)

	if err := svc.InitiatePasswordReset(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	stored := users.users["alice"]
	if stored.ResetToken == "" || stored.ResetTokenExpiry.IsZero() {
		t.Fatalf("reset token not persisted")
	}
	if len(mail.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(mail.sent))
	}
	if mail.sent[0].To != "alice@example.com" || !strings.Contains(mail.sent[0].Body, stored.ResetToken) {
		t.Fatalf("mail does not carry the reset link: %+v", mail.sent[0])
	}
}

func TestInitiatePasswordReset_UnknownAddressIsSilent(t *testing.T) {
	mail := &stubMailQueue{}
	svc := newTestAuthService(newStubUserRepo(), newStubEmployeeRepo(), mail)

	if err := svc.InitiatePasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected nil for unknown address, got %v", err)
	}
	if len(mail.sent) != 0 {
		t.Fatalf("no mail must be sent for unknown addresses")
	}
}

func TestInitiatePasswordReset_OverwritesOutstandingToken(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "alice", "secret1", "alice@example.com")
	svc := newTestAuthService(users, newStubEmployeeRepo(), &stubMailQueue{})

	ctx := context.Background()
	if err := svc.InitiatePasswordReset(ctx, "alice@example.com"); err != nil {
		t.Fatalf("first initiate: %v", err)
	}
	first := users.users["alice"].ResetToken
	if err := svc.InitiatePasswordReset(ctx, "alice@example.com"); err != nil {
		t.Fatalf("second initiate: %v", err)
	}
	second := users.users["alice"].ResetToken

	if first == second {
		t.Fatalf("second request must overwrite the token")
	}
	if err := svc.ResetPassword(ctx, first, "brandnew"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("stale token must be rejected, got %v", err)
	}
}

func TestResetPassword_ConsumesTokenExactlyOnce(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "alice", "secret1", "alice@example.com")
	svc := newTestAuthService(users, newStubEmployeeRepo(), &stubMailQueue{})

	ctx := context.Background()
	if err := svc.InitiatePasswordReset(ctx, "alice@example.com"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	token := users.users["alice"].ResetToken

	if err := svc.ResetPassword(ctx, token, "brandnew"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if users.users["alice"].PasswordHash != "hashed:brandnew" {
		t.Fatalf("password not updated")
	}
	if users.users["alice"].ResetToken != "" {
		t.Fatalf("token must be cleared after use")
	}
	if err := svc.ResetPassword(ctx, token, "again123"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("second use must fail, got %v", err)
	}
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	users := newStubUserRepo()
	seedUser(t, users, "alice", "secret1", "alice@example.com")
	svc := newTestAuthService(users, newStubEmployeeRepo(), &stubMailQueue{})

	ctx := context.Background()
	if err := svc.InitiatePasswordReset(ctx, "alice@example.com"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	token := users.users["alice"].ResetToken

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if err := svc.ResetPassword(ctx, token, "brandnew"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expired token must be rejected, got %v", err)
	}
	if users.users["alice"].PasswordHash != "hashed:secret1" {
		t.Fatalf("password must be untouched after expired reset")
	}
}

// --- Logout ---

func TestLogout_RevokesForRemainingLifetime(t *testing.T) {
	users := newStubUserRepo()
	revoker := newStubRevoker()
	expiry := time.Now().Add(30 * time.Minute)
	tokens := &stubTokenService{
		validateFn: func(token string) (*ports.TokenClaims, error) {
			return &ports.TokenClaims{Subject: "alice", ExpiresAt: expiry}, nil
		},
	}
	svc := NewAuthService(
		users, newStubEmployeeRepo(), tokens, revoker, fakeHasher{}, &stubMailQueue{},
		AuthConfig{}, zerolog.Nop(),
	)

	if err := svc.Logout(context.Background(), "some-token"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	ttl, ok := revoker.revoked["some-token"]
	if !ok {
		t.Fatalf("token not revoked")
	}
	if ttl <= 0 || ttl > 30*time.Minute {
		t.Fatalf("unexpected revocation ttl %v", ttl)
	}
}

func TestLogout_InvalidToken(t *testing.T) {
	tokens := &stubTokenService{
		validateFn: func(token string) (*ports.TokenClaims, error) {
			return nil, domain.ErrTokenMalformed
		},
	}
	svc := NewAuthService(
		newStubUserRepo(), newStubEmployeeRepo(), tokens, newStubRevoker(), fakeHasher{}, &stubMailQueue{},
		AuthConfig{}, zerolog.Nop(),
	)

	if err := svc.Logout(context.Background(), "garbage"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}
