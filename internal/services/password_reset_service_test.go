package services

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mestre-da-redacao/backend/internal/domain/passwordreset"
	"github.com/mestre-da-redacao/backend/internal/domain/user"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/testutil"
)

type resetFixture struct {
	service *PasswordResetService
	repo    *testutil.MockResetTokenRepository
	users   user.Service
	mailer  *testutil.MockMailer
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	userRepo := testutil.NewMockUserRepository()
	subRepo := testutil.NewMockSubscriptionRepository()
	users := NewUserService(userRepo, subRepo, log, bcrypt.MinCost)
	repo := testutil.NewMockResetTokenRepository()
	mailer := testutil.NewMockMailer()

	service := NewPasswordResetService(repo, users, mailer, log,
		"https://mestredaredacao.com.br", time.Hour, bcrypt.MinCost)

	if _, err := users.Register(context.Background(), "aluno@example.com", "Aluno", "senha-antiga"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	return &resetFixture{service: service, repo: repo, users: users, mailer: mailer}
}

// issuedToken returns the single token created by a Request call
func (f *resetFixture) issuedToken(t *testing.T) *passwordreset.Token {
	t.Helper()
	if len(f.repo.Tokens) != 1 {
		t.Fatalf("expected exactly one token, have %d", len(f.repo.Tokens))
	}
	for _, tok := range f.repo.Tokens {
		return tok
	}
	return nil
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T: %v", err, err)
	}
	return appErr.Code
}

func TestPasswordResetService_Request(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	// Unknown email succeeds without leaving a trace.
	if err := f.service.Request(ctx, "ninguem@example.com"); err != nil {
		t.Fatalf("Request() for unknown email error = %v", err)
	}
	if len(f.repo.Tokens) != 0 {
		t.Errorf("unknown email created %d tokens, want 0", len(f.repo.Tokens))
	}
	if len(f.mailer.ResetEmails) != 0 {
		t.Errorf("unknown email sent %d mails, want 0", len(f.mailer.ResetEmails))
	}

	if err := f.service.Request(ctx, "aluno@example.com"); err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	tok := f.issuedToken(t)
	if tok.Step != passwordreset.StepPending {
		t.Errorf("step = %v, want %v", tok.Step, passwordreset.StepPending)
	}
	if tok.Used {
		t.Error("fresh token should not be marked used")
	}
	if len(tok.Token) != 64 {
		t.Errorf("token length = %d, want 64", len(tok.Token))
	}
	if len(f.mailer.ResetEmails) != 1 || f.mailer.ResetEmails[0] != "aluno@example.com" {
		t.Errorf("reset mail recipients = %v, want [aluno@example.com]", f.mailer.ResetEmails)
	}
}

func TestPasswordResetService_SubmitNewPassword(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		password    string
		setup       func(f *resetFixture, tok *passwordreset.Token) string
		wantErrCode string
	}{
		{
			name:     "password too short",
			password: "curta",
			setup: func(f *resetFixture, tok *passwordreset.Token) string {
				return tok.Token
			},
			wantErrCode: errors.ErrCodeBadRequest,
		},
		{
			name:     "unknown token",
			password: "senha-nova-123",
			setup: func(f *resetFixture, tok *passwordreset.Token) string {
				return "nao-existe"
			},
			wantErrCode: errors.ErrCodeTokenInvalid,
		},
		{
			name:     "expired token rejected even when unused",
			password: "senha-nova-123",
			setup: func(f *resetFixture, tok *passwordreset.Token) string {
				f.service.now = func() time.Time { return tok.ExpiresAt.Add(time.Minute) }
				return tok.Token
			},
			wantErrCode: errors.ErrCodeTokenExpired,
		},
		{
			name:     "expired wins over used",
			password: "senha-nova-123",
			setup: func(f *resetFixture, tok *passwordreset.Token) string {
				tok.Used = true
				f.service.now = func() time.Time { return tok.ExpiresAt.Add(time.Minute) }
				return tok.Token
			},
			wantErrCode: errors.ErrCodeTokenExpired,
		},
		{
			name:     "used token rejected",
			password: "senha-nova-123",
			setup: func(f *resetFixture, tok *passwordreset.Token) string {
				tok.Used = true
				return tok.Token
			},
			wantErrCode: errors.ErrCodeTokenUsed,
		},
		{
			name:     "valid submission",
			password: "senha-nova-123",
			setup: func(f *resetFixture, tok *passwordreset.Token) string {
				return tok.Token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newResetFixture(t)
			if err := f.service.Request(ctx, "aluno@example.com"); err != nil {
				t.Fatalf("Request() error = %v", err)
			}
			token := tt.setup(f, f.issuedToken(t))

			result, err := f.service.SubmitNewPassword(ctx, token, tt.password)

			if tt.wantErrCode != "" {
				if err == nil {
					t.Fatal("SubmitNewPassword() expected error, got nil")
				}
				if code := appErrCode(t, err); code != tt.wantErrCode {
					t.Errorf("error code = %v, want %v", code, tt.wantErrCode)
				}
				return
			}

			if err != nil {
				t.Fatalf("SubmitNewPassword() error = %v", err)
			}
			if !result.Success || result.NextStep != "login" {
				t.Errorf("result = %+v, want success with next step login", result)
			}

			tok := f.issuedToken(t)
			if !tok.Used || tok.Step != passwordreset.StepPasswordSet {
				t.Errorf("token state = used:%v step:%v, want used at %v", tok.Used, tok.Step, passwordreset.StepPasswordSet)
			}
			if bcrypt.CompareHashAndPassword([]byte(tok.NewPasswordHash), []byte(tt.password)) != nil {
				t.Error("staged hash does not match the submitted password")
			}

			// The account credential is untouched until Finalize.
			if ok, _ := f.users.VerifyPassword(ctx, "aluno@example.com", "senha-antiga"); !ok {
				t.Error("old password should still authenticate before Finalize")
			}
		})
	}
}

func TestPasswordResetService_Finalize(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	if err := f.service.Request(ctx, "aluno@example.com"); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	tok := f.issuedToken(t)
	if _, err := f.service.SubmitNewPassword(ctx, tok.Token, "senha-nova-123"); err != nil {
		t.Fatalf("SubmitNewPassword() error = %v", err)
	}

	// Wrong current password is rejected.
	if err := f.service.Finalize(ctx, "aluno@example.com", "senha-errada"); err == nil {
		t.Fatal("Finalize() with a wrong password should fail")
	}

	if err := f.service.Finalize(ctx, "aluno@example.com", "senha-antiga"); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if ok, _ := f.users.VerifyPassword(ctx, "aluno@example.com", "senha-nova-123"); !ok {
		t.Error("new password should authenticate after Finalize")
	}
	if ok, _ := f.users.VerifyPassword(ctx, "aluno@example.com", "senha-antiga"); ok {
		t.Error("old password should no longer authenticate")
	}
	if tok.Step != passwordreset.StepCompleted {
		t.Errorf("step = %v, want %v", tok.Step, passwordreset.StepCompleted)
	}
	if tok.CompletedAt == nil {
		t.Error("CompletedAt should be stamped")
	}
}

func TestPasswordResetService_FinalizeAcceptsStagedPassword(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	if err := f.service.Request(ctx, "aluno@example.com"); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	tok := f.issuedToken(t)
	if _, err := f.service.SubmitNewPassword(ctx, tok.Token, "senha-nova-123"); err != nil {
		t.Fatalf("SubmitNewPassword() error = %v", err)
	}

	// Simulate a finalize that applied the credential but died before
	// marking the token: the account already holds the new password.
	u, _ := f.users.GetByEmail(ctx, "aluno@example.com")
	if err := f.users.SetPasswordHash(ctx, u.ID, tok.NewPasswordHash); err != nil {
		t.Fatalf("SetPasswordHash() error = %v", err)
	}

	// Retrying with the new password must complete the flow.
	if err := f.service.Finalize(ctx, "aluno@example.com", "senha-nova-123"); err != nil {
		t.Fatalf("Finalize() retry error = %v", err)
	}
	if tok.Step != passwordreset.StepCompleted {
		t.Errorf("step = %v, want %v", tok.Step, passwordreset.StepCompleted)
	}
}

func TestPasswordResetService_FinalizeWithoutPendingReset(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	err := f.service.Finalize(ctx, "aluno@example.com", "senha-antiga")
	if err == nil {
		t.Fatal("Finalize() without a staged reset should fail")
	}
	if code := appErrCode(t, err); code != errors.ErrCodeNotFound {
		t.Errorf("error code = %v, want %v", code, errors.ErrCodeNotFound)
	}
}

func TestPasswordResetService_CheckCredentials(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{
			name:     "valid credentials",
			email:    "aluno@example.com",
			password: "senha-antiga",
			want:     true,
		},
		{
			name:     "wrong password",
			email:    "aluno@example.com",
			password: "senha-errada",
			want:     false,
		},
		{
			name:     "unknown email reports false without error",
			email:    "ninguem@example.com",
			password: "qualquer",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := f.service.CheckCredentials(ctx, tt.email, tt.password)
			if err != nil {
				t.Fatalf("CheckCredentials() error = %v", err)
			}
			if ok != tt.want {
				t.Errorf("CheckCredentials() = %v, want %v", ok, tt.want)
			}
		})
	}
}
