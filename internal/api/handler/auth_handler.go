package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/opratem/schoolems/internal/api/metrics"
	"github.com/opratem/schoolems/internal/api/middleware"
	"github.com/opratem/schoolems/internal/core/domain"
	"github.com/opratem/schoolems/internal/core/ports"
)

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerEmployeeRequest struct {
	EmployeeID  string `json:"employee_id"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	Position    string `json:"position"`
	ContactInfo string `json:"contact_info"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
}

type registerRequest struct {
	Username string                   `json:"username" validate:"required"`
	Password string                   `json:"password" validate:"required,min=6"`
	Email    string                   `json:"email,omitempty" validate:"omitempty,email"`
	Roles    []string                 `json:"roles,omitempty"`
	Employee *registerEmployeeRequest `json:"employee,omitempty"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// identitySummary is the account view returned by login and register.
type identitySummary struct {
	Username   string   `json:"username"`
	Role       string   `json:"role"`
	Roles      []string `json:"roles"`
	Email      string   `json:"email,omitempty"`
	EmployeeID string   `json:"employee_id,omitempty"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  identitySummary `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func summarize(user *domain.User) identitySummary {
	return identitySummary{
		Username:   user.Username,
		Role:       string(user.PrimaryRole()),
		Roles:      user.RoleNames(),
		Email:      user.Email,
		EmployeeID: user.EmployeeID,
	}
}

// Login authenticates an account and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: summarize(user)})
}

// Register creates a new account, optionally with a linked employee record.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	input := ports.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Roles:    req.Roles,
	}
	if emp := req.Employee; emp != nil {
		startDate, err := parseDate(emp.StartDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "start_date must be YYYY-MM-DD"})
		}
		input.Employee = &ports.RegisterEmployeeInput{
			EmployeeID:  emp.EmployeeID,
			Name:        emp.Name,
			Department:  emp.Department,
			Position:    emp.Position,
			ContactInfo: emp.ContactInfo,
			StartDate:   startDate,
		}
	}

	token, user, err := h.authService.Register(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "user already exists"})
		case errors.Is(err, domain.ErrWeakPassword),
			errors.Is(err, domain.ErrUnknownRole),
			errors.Is(err, domain.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(user.PrimaryRole())).Inc()
	return c.JSON(http.StatusOK, authResponse{Token: token, User: summarize(user)})
}

// ForgotPassword starts the reset flow. The answer is identical whether or
// not the address has an account.
//
// @Summary      Request a password reset link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	if err := h.authService.InitiatePasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()
	return c.JSON(http.StatusOK, messageResponse{
		Message: "If this account exists, a password reset link has been sent.",
	})
}

// ResetPassword consumes a reset token and sets a new password.
//
// @Summary      Reset password with a token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrResetTokenInvalid):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid or expired reset token"})
		case errors.Is(err, domain.ErrWeakPassword):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Password changed successfully."})
}

// ChangePassword swaps the password of the authenticated account.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/change-password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	username, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	if err := h.authService.ChangePassword(c.Request().Context(), username, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrWeakPassword):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "current password is incorrect or new password is invalid"})
		}
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Password changed successfully."})
}

// Logout revokes the presented token for its remaining lifetime.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}
	raw, _ := c.Get(middleware.ContextKeyToken).(string)

	if err := h.authService.Logout(c.Request().Context(), raw); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out."})
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}
