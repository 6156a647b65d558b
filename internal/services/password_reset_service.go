package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/passwordreset"
	"github.com/mestre-da-redacao/backend/internal/domain/user"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// PasswordResetService implements passwordreset.Service. It is the only
// implementation of the reset flow; each state transition lives in exactly
// one method.
type PasswordResetService struct {
	repo        passwordreset.Repository
	users       user.Service
	mailer      Mailer
	logger      *logger.Logger
	siteURL     string
	tokenExpiry time.Duration
	bcryptCost  int
	now         func() time.Time
}

// NewPasswordResetService creates a new password reset service
func NewPasswordResetService(
	repo passwordreset.Repository,
	users user.Service,
	mailer Mailer,
	log *logger.Logger,
	siteURL string,
	tokenExpiry time.Duration,
	bcryptCost int,
) *PasswordResetService {
	if tokenExpiry == 0 {
		tokenExpiry = time.Hour
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &PasswordResetService{
		repo:        repo,
		users:       users,
		mailer:      mailer,
		logger:      log,
		siteURL:     siteURL,
		tokenExpiry: tokenExpiry,
		bcryptCost:  bcryptCost,
		now:         time.Now,
	}
}

// Request issues a reset token and emails the link. When no account matches,
// it still succeeds without creating anything, so the endpoint cannot be used
// to enumerate registered addresses.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"email": email,
		}).Info("Password reset requested for unknown email")
		return nil
	}

	token, err := generateResetToken()
	if err != nil {
		return errors.Internal("Failed to generate reset token", err)
	}

	t := &passwordreset.Token{
		Token:     token,
		Email:     u.Email,
		ExpiresAt: s.now().Add(s.tokenExpiry),
		Used:      false,
		Step:      passwordreset.StepPending,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/redefinir-senha?token=%s", s.siteURL, url.QueryEscape(token))
	if err := s.mailer.SendPasswordReset(ctx, u.Email, link); err != nil {
		s.logger.ErrorWithErr(err, "Failed to send password reset email")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"email": u.Email,
	}).Info("Password reset token issued")

	return nil
}

// SubmitNewPassword validates the token and stages the new credential on the
// token row as a bcrypt hash. The account credential is untouched until
// Finalize. Expiry is checked before the used flag so an expired token is
// rejected regardless of its state.
func (s *PasswordResetService) SubmitNewPassword(ctx context.Context, token, newPassword string) (*passwordreset.SubmitResult, error) {
	if len(newPassword) < 6 {
		return nil, errors.BadRequest("Password must be at least 6 characters")
	}

	t, err := s.repo.Get(ctx, token)
	if err != nil {
		return nil, errors.TokenInvalid()
	}
	if t.Expired(s.now()) {
		return nil, errors.TokenExpired()
	}
	if t.Used {
		return nil, errors.TokenUsed()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	t.NewPasswordHash = string(hash)
	t.Used = true
	t.Step = passwordreset.StepPasswordSet
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"email": t.Email,
	}).Info("New password staged for reset")

	return &passwordreset.SubmitResult{Success: true, NextStep: "login"}, nil
}

// Finalize applies the staged credential. The caller proves ownership with
// the current password; when that fails, the staged password itself is
// accepted as proof that a previous finalize already went through partway.
func (s *PasswordResetService) Finalize(ctx context.Context, email, currentPassword string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return errors.Unauthorized("Invalid credentials")
	}

	t, err := s.repo.GetLatestByEmail(ctx, u.Email, passwordreset.StepPasswordSet)
	if err != nil {
		return errors.New(errors.ErrCodeNotFound, "No pending password reset for this account", 400)
	}

	ok := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)) == nil
	if !ok {
		// Partial completion: the account may already hold the new credential
		// from an earlier attempt that died before marking the token.
		ok = bcrypt.CompareHashAndPassword([]byte(t.NewPasswordHash), []byte(currentPassword)) == nil
	}
	if !ok {
		return errors.Unauthorized("Invalid credentials")
	}

	if err := s.users.SetPasswordHash(ctx, u.ID, t.NewPasswordHash); err != nil {
		return err
	}

	now := s.now()
	t.Step = passwordreset.StepCompleted
	t.CompletedAt = &now
	if err := s.repo.Update(ctx, t); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"email": u.Email,
	}).Info("Password reset completed")

	return nil
}

// CheckCredentials reports whether the pair currently authenticates
func (s *PasswordResetService) CheckCredentials(ctx context.Context, email, password string) (bool, error) {
	ok, err := s.users.VerifyPassword(ctx, email, password)
	if err != nil {
		// Do not reveal whether the account exists
		return false, nil
	}
	return ok, nil
}

// generateResetToken returns a 64-character opaque hex token
func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
