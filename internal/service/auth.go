// Package service contains application services: authentication, session
// revocation, inactivity tracking, request admission, cleanup and sales.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	pkgcrypto "github.com/and161185/salesgate/internal/crypto"
	"github.com/and161185/salesgate/internal/errs"
	"github.com/and161185/salesgate/internal/model"
	"github.com/and161185/salesgate/internal/repository"
	"github.com/and161185/salesgate/internal/token"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

const minPasswordLen = 8

// AuthService defines account and session operations.
type AuthService interface {
	// Register creates a new user with a hashed password.
	Register(ctx context.Context, email, password, customerCode string) (uuid.UUID, error)
	// Login authenticates the user and issues an access token.
	Login(ctx context.Context, email, password string) (model.Tokens, model.User, error)
	// Logout blacklists the token and drops its activity record. Repeating it is harmless.
	Logout(ctx context.Context, raw string) error
	// ForgotPassword issues a one-time reset token. Unknown emails succeed silently.
	ForgotPassword(ctx context.Context, email string) error
	// ResetPassword consumes a reset token and sets a new password.
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

// TokenIssuer issues access and reset tokens.
type TokenIssuer interface {
	IssueAccessToken(subject string, p token.Profile, ttl time.Duration) (string, time.Time, error)
	IssueResetToken() (string, error)
}

// ActivityRemover drops the activity record of a token.
type ActivityRemover interface {
	RemoveActivity(ctx context.Context, raw string) error
}

// ResetNotifier delivers reset tokens to users.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, email, resetToken string) error
}

type AuthServiceImpl struct {
	users    repository.UserRepository
	issuer   TokenIssuer
	revoker  Revoker
	activity ActivityRemover
	notifier ResetNotifier
	resetTTL time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(
	users repository.UserRepository,
	issuer TokenIssuer,
	revoker Revoker,
	activity ActivityRemover,
	notifier ResetNotifier,
	resetTTL time.Duration,
	log *zap.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		users:    users,
		issuer:   issuer,
		revoker:  revoker,
		activity: activity,
		notifier: notifier,
		resetTTL: resetTTL,
		log:      log,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Register creates a new user record.
func (s *AuthServiceImpl) Register(ctx context.Context, email, password, customerCode string) (uuid.UUID, error) {
	email = normalizeEmail(email)
	customerCode = strings.TrimSpace(customerCode)
	if _, err := mail.ParseAddress(email); err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad email", errs.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return uuid.Nil, fmt.Errorf("%w: password must be at least %d characters", errs.ErrInvalidInput, minPasswordLen)
	}
	if customerCode == "" {
		return uuid.Nil, fmt.Errorf("%w: empty customer code", errs.ErrInvalidInput)
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return uuid.Nil, err
	}
	u := &model.User{ID: uid, Email: email, CustomerCode: customerCode, PwdHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return uuid.Nil, err
	}
	s.log.Info("user registered", zap.String("user_id", uid.String()))
	return uid, nil
}

// Login checks credentials and issues an access token carrying the user's profile.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (model.Tokens, model.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Tokens{}, model.User{}, errs.ErrUnauthorized
		}
		return model.Tokens{}, model.User{}, err
	}
	if !pkgcrypto.VerifyPassword(password, u.PwdHash) {
		// hide existence of the user on wrong password
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	p := token.Profile{Email: u.Email, CustomerCode: u.CustomerCode, Roles: token.RoleUser}
	access, exp, err := s.issuer.IssueAccessToken(u.ID.String(), p, 0)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// Logout blacklists the token before removing its activity record.
// An unparseable token is reported as errs.ErrUnauthorized.
func (s *AuthServiceImpl) Logout(ctx context.Context, raw string) error {
	if err := s.revoker.Add(ctx, raw); err != nil {
		if errors.Is(err, errs.ErrTokenParse) {
			return errs.ErrUnauthorized
		}
		return err
	}
	return s.activity.RemoveActivity(ctx, raw)
}

// ForgotPassword stores a fresh reset token on the user and hands it to the notifier.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, errs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	resetToken, err := s.issuer.IssueResetToken()
	if err != nil {
		return err
	}
	if err := s.users.SetResetToken(ctx, u.ID, resetToken, s.now().Add(s.resetTTL)); err != nil {
		return err
	}
	return s.notifier.SendPasswordReset(ctx, u.Email, resetToken)
}

// ResetPassword replaces the password if resetToken is known and unexpired. The token is single use.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if strings.TrimSpace(resetToken) == "" {
		return fmt.Errorf("%w: empty reset token", errs.ErrInvalidInput)
	}
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", errs.ErrInvalidInput, minPasswordLen)
	}
	hash, err := pkgcrypto.HashPassword(newPassword)
	if err != nil {
		return err
	}
	id, err := s.users.ConsumeResetToken(ctx, resetToken, hash, s.now())
	if errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("%w: reset token is invalid or expired", errs.ErrInvalidInput)
	}
	if err != nil {
		return err
	}
	s.log.Info("password reset", zap.String("user_id", id.String()))
	return nil
}

// LogNotifier records that a reset was issued without delivering it.
// Used when no mail delivery is configured; the token itself is never logged.
type LogNotifier struct{ Log *zap.Logger }

// SendPasswordReset logs the event at info level.
func (n LogNotifier) SendPasswordReset(_ context.Context, email, _ string) error {
	n.Log.Info("password reset issued", zap.String("email", email))
	return nil
}
