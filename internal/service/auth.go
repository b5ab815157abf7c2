package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/validation"
)

const (
	msgUserExists         = "User Already Exists With This Email!"
	msgInvalidCredentials = "Invalid Credentials"
	msgNoToken            = "Not authorized, no token"
	msgTokenFailed        = "Not authorized, token failed"
	msgUserGone           = "Not authorized, user not found"
)

type AuthService struct {
	Users  repo.Users
	Tokens *tokens.Issuer
	Events events.Publisher

	// AllowRoleOnSignup honors the role field of a signup request.
	AllowRoleOnSignup bool
	// StrictLoginPassword applies the signup password policy on login too.
	StrictLoginPassword bool
}

type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, req transport.SignupRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	req.Name = strings.ToLower(strings.TrimSpace(req.Name))
	req.Email = normalizeEmail(req.Email)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if err := validation.Struct(req); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid body", "error", err)
		return nil, err
	}

	role := models.RoleCustomer
	if s.AllowRoleOnSignup && req.Role == string(models.RoleAdmin) {
		role = models.RoleAdmin
	}

	if _, err := s.Users.UserByEmail(ctx, req.Email); err == nil {
		l.Warn("signup_error", "status", 400, "reason", "user already exists")
		return nil, apperr.Conflict(msgUserExists)
	} else if !errors.Is(err, repo.ErrNotFound) {
		l.Error("signup_error", "status", 500, "reason", "cannot look up user", "error", err)
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("signup_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("signup_error", "status", 400, "reason", "user already exists")
			return nil, apperr.Conflict(msgUserExists)
		}
		l.Error("signup_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUsers, events.NewEvent(events.UserSignedUp, user.ID, map[string]any{
		"email": user.Email,
		"role":  user.Role,
	}))
	l.Info("signup_success", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)

	var err error
	if s.StrictLoginPassword {
		err = validation.Struct(transport.StrictLoginRequest{Email: email, Password: password})
	} else {
		err = validation.Struct(transport.LoginRequest{Email: email, Password: password})
	}
	if err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return nil, err
	}

	user, err := s.Users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, apperr.Unauthenticated(msgInvalidCredentials)
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch")
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}

	token, exp, err := s.Tokens.Sign(user.ID)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUsers, events.NewEvent(events.UserLoggedIn, user.ID, nil))
	l.Info("login_successful", "user_id", user.ID)
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// Authenticate resolves the user behind a raw session token.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.authenticate")

	if raw == "" {
		return nil, apperr.Unauthenticated(msgNoToken)
	}
	claims, err := s.Tokens.Parse(raw)
	if err != nil {
		l.Warn("session_rejected", "status", 401, "reason", "invalid token", "error", err)
		return nil, apperr.Wrap(apperr.ErrUnauthenticated, msgTokenFailed, err)
	}
	user, err := s.Users.UserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("session_rejected", "status", 401, "reason", "user not found", "user_id", claims.Subject)
			return nil, apperr.Unauthenticated(msgUserGone)
		}
		return nil, err
	}
	return user, nil
}
