package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-account-api/app/observability/metrics"
	"github.com/FACorreiaa/go-account-api/config"
	"github.com/FACorreiaa/go-account-api/internal/types"
)

// Ensure implementation satisfies the interface
var _ AccountService = (*AccountServiceImpl)(nil)

// AccountService defines the business logic contract for account operations.
type AccountService interface {
	// Register creates a user and issues a bearer token bound to it.
	Register(ctx context.Context, name, email, password string) (*types.AuthPayload, error)

	// Login verifies credentials, refreshes last_login_at and issues a
	// fresh token. Unknown email, wrong password and inactive accounts
	// all surface the same types.ErrUnauthenticated.
	Login(ctx context.Context, email, password string) (*types.AuthPayload, error)

	// GetProfile returns the user for the authenticated identity.
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.User, error)

	// UpdateProfile mutates only the supplied fields.
	UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileRequest) (*types.User, error)

	// ChangePassword replaces the stored hash after verifying the current
	// password. Previously issued tokens stay valid until expiry.
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error

	// Logout is a no-op server-side; tokens are stateless. It exists for
	// symmetry and audit logging.
	Logout(ctx context.Context, userID uuid.UUID) error

	// DeleteAccount removes the user record permanently.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// AccountServiceImpl provides the implementation for AccountService.
type AccountServiceImpl struct {
	logger *slog.Logger
	repo   AccountRepo
	cfg    *config.Config
}

// NewAccountService creates a new account service instance.
func NewAccountService(repo AccountRepo, cfg *config.Config, logger *slog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{
		logger: logger,
		repo:   repo,
		cfg:    cfg,
	}
}

// dummyHash is a valid bcrypt hash compared against when the email is
// unknown, so login latency does not reveal whether an account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountServiceImpl) Register(ctx context.Context, name, email, password string) (*types.AuthPayload, error) {
	l := s.logger.With(slog.String("method", "Register"))
	start := time.Now()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, name, normalizeEmail(email), string(hashedPassword))
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			l.WarnContext(ctx, "Registration rejected, email already registered")
			return nil, err
		}
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := IssueToken(s.cfg.JWT, user)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue token", slog.Any("error", err))
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	if m := metrics.Get(); m != nil {
		m.RegisterRequestsTotal.Add(ctx, 1)
		m.RegisterDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}

	l.InfoContext(ctx, "User registered", slog.String("userID", user.ID.String()))
	return &types.AuthPayload{Token: token, User: user}, nil
}

func (s *AccountServiceImpl) Login(ctx context.Context, email, password string) (*types.AuthPayload, error) {
	l := s.logger.With(slog.String("method", "Login"))

	if m := metrics.Get(); m != nil {
		m.LoginRequestsTotal.Add(ctx, 1)
	}

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// Burn a hash comparison so unknown emails take as long as
			// wrong passwords.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, s.rejectLogin(ctx, l, "unknown email")
		}
		l.ErrorContext(ctx, "Failed to look up user", slog.Any("error", err))
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	if !user.IsActive {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, s.rejectLogin(ctx, l, "inactive account")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, s.rejectLogin(ctx, l, "wrong password")
	}

	lastLogin, err := s.repo.UpdateLastLogin(ctx, user.ID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update last login", slog.Any("error", err))
		return nil, fmt.Errorf("error updating last login: %w", err)
	}
	user.LastLoginAt = &lastLogin

	token, err := IssueToken(s.cfg.JWT, user)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue token", slog.Any("error", err))
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	l.InfoContext(ctx, "User logged in", slog.String("userID", user.ID.String()))
	return &types.AuthPayload{Token: token, User: user}, nil
}

// rejectLogin logs the real reason server-side and returns the generic
// credentials error; the reason must never reach the client.
func (s *AccountServiceImpl) rejectLogin(ctx context.Context, l *slog.Logger, reason string) error {
	if m := metrics.Get(); m != nil {
		m.LoginFailuresTotal.Add(ctx, 1)
	}
	l.WarnContext(ctx, "Login rejected", slog.String("reason", reason))
	return fmt.Errorf("invalid credentials: %w", types.ErrUnauthenticated)
}

func (s *AccountServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Failed to fetch user profile", slog.Any("error", err))
		return nil, fmt.Errorf("error fetching user profile: %w", err)
	}
	return user, nil
}

func (s *AccountServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileRequest) (*types.User, error) {
	l := s.logger.With(slog.String("method", "UpdateProfile"), slog.String("userID", userID.String()))

	if params.Email != nil {
		normalized := normalizeEmail(*params.Email)
		params.Email = &normalized
	}

	user, err := s.repo.UpdateProfile(ctx, userID, params)
	if err != nil {
		if errors.Is(err, types.ErrConflict) || errors.Is(err, types.ErrNotFound) {
			return nil, err
		}
		l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	l.InfoContext(ctx, "Profile updated")
	return user, nil
}

func (s *AccountServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	l := s.logger.With(slog.String("method", "ChangePassword"), slog.String("userID", userID.String()))

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return err
		}
		l.ErrorContext(ctx, "Failed to fetch user", slog.Any("error", err))
		return fmt.Errorf("error fetching user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		l.WarnContext(ctx, "Password change rejected, current password mismatch")
		return fmt.Errorf("current password is incorrect: %w", types.ErrUnauthenticated)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(newHash)); err != nil {
		l.ErrorContext(ctx, "Failed to update password", slog.Any("error", err))
		return fmt.Errorf("error updating password: %w", err)
	}

	// Tokens issued before this point remain valid until expiry; the
	// bearer-token design has no revocation list.
	l.InfoContext(ctx, "Password changed")
	return nil
}

func (s *AccountServiceImpl) Logout(ctx context.Context, userID uuid.UUID) error {
	// Stateless tokens: nothing to invalidate server-side. Logged for audit.
	s.logger.InfoContext(ctx, "User logged out", slog.String("userID", userID.String()))
	return nil
}

func (s *AccountServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	l := s.logger.With(slog.String("method", "DeleteAccount"), slog.String("userID", userID.String()))

	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return err
		}
		l.ErrorContext(ctx, "Failed to delete user", slog.Any("error", err))
		return fmt.Errorf("error deleting user: %w", err)
	}

	l.InfoContext(ctx, "Account deleted")
	return nil
}
