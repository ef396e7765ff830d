package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/file-vault/internal/apperror"
	"github.com/sakif/file-vault/internal/model"
)

// MinPasswordLength applies to password changes.
const MinPasswordLength = 6

// AuthService handles sign-up, sign-in and account settings.
//
// Every successful Login or Signup establishes the session; Logout clears it.
// Passwords never leave this layer: callers only ever see model.User.
type AuthService struct {
	users    CredentialStore
	sessions SessionStore
	opts     Options
	logger   *slog.Logger
}

func NewAuthService(users CredentialStore, sessions SessionStore, opts Options, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		opts:     opts,
		logger:   logger,
	}
}

// Bootstrap runs once at startup: it makes sure the admin account exists and restores
// the persisted session. It returns the restored user, or nil. A session whose account
// no longer exists is cleared.
func (s *AuthService) Bootstrap(ctx context.Context) (*model.User, error) {
	if err := s.users.BootstrapAdmin(ctx); err != nil {
		return nil, fmt.Errorf("service/auth: bootstrapping admin: %w", err)
	}

	user, err := s.sessions.Restore(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: restoring session: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	if _, err := s.users.FindByID(ctx, user.ID); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: checking session account: %w", err)
		}
		s.logger.Warn("dropping session for unknown account", slog.String("userID", user.ID))
		if err := s.sessions.Clear(ctx); err != nil {
			return nil, fmt.Errorf("service/auth: clearing session: %w", err)
		}
		return nil, nil
	}

	s.logger.Info("session restored", slog.String("userID", user.ID))
	return user, nil
}

// Login checks the credentials and establishes the session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}

	if err := pause(ctx, s.opts.Latency); err != nil {
		return nil, err
	}

	account, err := s.users.FindByCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Info("login failed", slog.String("email", email))
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up credentials: %w", err)
	}

	user := account.Profile()
	if err := s.sessions.Establish(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: establishing session: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return &user, nil
}

// Signup creates an account and signs it in.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "email address is invalid")
	}

	if err := pause(ctx, s.opts.Latency); err != nil {
		return nil, err
	}

	account, err := s.users.Create(ctx, name, email, password)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating account: %w", err)
	}

	user := account.Profile()
	if err := s.sessions.Establish(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: establishing session: %w", err)
	}

	s.logger.Info("user signed up", slog.String("userID", user.ID), slog.String("email", user.Email))
	return &user, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	current := s.sessions.Current()
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("service/auth: clearing session: %w", err)
	}
	if current != nil {
		s.logger.Info("user logged out", slog.String("userID", current.ID))
	}
	return nil
}

// CurrentUser returns the signed-in user or an apperror.ErrUnauthorized error.
func (s *AuthService) CurrentUser() (*model.User, error) {
	user := s.sessions.Current()
	if user == nil {
		return nil, apperror.Unauthorized("no active session")
	}
	return user, nil
}

// UpdateProfile changes the display name and picture of userID. When userID is the
// active session, the session is refreshed too.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name, profilePicture string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}

	account, err := s.users.UpdateProfile(ctx, userID, name, strings.TrimSpace(profilePicture))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: updating profile: %w", err)
	}

	user := account.Profile()
	if current := s.sessions.Current(); current != nil && current.ID == userID {
		if err := s.sessions.Establish(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: refreshing session: %w", err)
		}
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return &user, nil
}

// PasswordChange is the settings form for a new password.
type PasswordChange struct {
	Current string `json:"currentPassword"`
	New     string `json:"newPassword"`
	Confirm string `json:"confirmPassword"`
}

// ChangePassword verifies the current password and stores the new one.
// A wrong current password yields apperror.ErrWrongPassword and changes nothing.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, in PasswordChange) error {
	if in.Current == "" || in.New == "" || in.Confirm == "" {
		return apperror.ValidationFailed("newPassword", "please fill in all password fields")
	}
	if in.New != in.Confirm {
		return apperror.ValidationFailed("confirmPassword", "new passwords do not match")
	}
	if len(in.New) < MinPasswordLength {
		return apperror.ValidationFailed("newPassword",
			fmt.Sprintf("new password must be at least %d characters", MinPasswordLength))
	}

	if err := s.users.UpdatePassword(ctx, userID, in.Current, in.New); err != nil {
		if errors.Is(err, apperror.ErrWrongPassword) || errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service/auth: updating password: %w", err)
	}

	s.logger.Info("password changed", slog.String("userID", userID))
	return nil
}

// RequestPasswordReset checks that an account exists for email. No message is sent:
// the vault has no mail transport, so this only confirms the address is known.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperror.ValidationFailed("email", "email address is required")
	}

	if err := pause(ctx, s.opts.Latency); err != nil {
		return err
	}

	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service/auth: looking up account: %w", err)
	}

	s.logger.Info("password reset requested", slog.String("email", email))
	return nil
}
