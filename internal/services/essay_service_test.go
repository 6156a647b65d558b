package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mestre-da-redacao/backend/internal/domain/essay"
	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
	"github.com/mestre-da-redacao/backend/internal/domain/user"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/testutil"
)

type essayFixture struct {
	service *EssayService
	repo    *testutil.MockEssayRepository
	subRepo *testutil.MockSubscriptionRepository
	mailer  *testutil.MockMailer
	student *user.User
	theme   *essay.Theme
}

// newEssayFixture builds an essay service with one student on the given plan,
// one professor and one active theme.
func newEssayFixture(t *testing.T, plan string, tokens int) *essayFixture {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	userRepo := testutil.NewMockUserRepository()
	subRepo := testutil.NewMockSubscriptionRepository()
	users := NewUserService(userRepo, subRepo, log, bcrypt.MinCost)
	repo := testutil.NewMockEssayRepository()
	mailer := testutil.NewMockMailer()
	subs := NewSubscriptionService(subRepo, log)

	service := NewEssayService(repo, subs, users, mailer, log)

	ctx := context.Background()
	student, err := users.Register(ctx, "aluno@example.com", "Aluno", "senha")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := users.CreateStaff(ctx, "prof@example.com", "Prof", "senha", user.RoleProfessor); err != nil {
		t.Fatalf("CreateStaff() error = %v", err)
	}

	sub, _ := subRepo.GetByUserID(ctx, student.ID)
	sub.Type = plan
	sub.TokensAvailable = tokens
	if plan == subscription.PlanMestre {
		// Stamp the current month so the fixture balance survives GetForUser.
		now := time.Now()
		sub.LastTokenReset = &now
	}

	theme, err := service.CreateTheme(ctx, "Educação no Brasil", "Discuta os desafios.")
	if err != nil {
		t.Fatalf("CreateTheme() error = %v", err)
	}

	return &essayFixture{
		service: service,
		repo:    repo,
		subRepo: subRepo,
		mailer:  mailer,
		student: student,
		theme:   theme,
	}
}

func TestEssayService_Submit(t *testing.T) {
	tests := []struct {
		name        string
		plan        string
		tokens      int
		wantErrCode string
		wantBalance int
	}{
		{
			name:        "free plan cannot submit",
			plan:        subscription.PlanFree,
			tokens:      0,
			wantErrCode: errors.ErrCodeFeatureLocked,
		},
		{
			name:        "avulsa without token cannot submit",
			plan:        subscription.PlanAvulsa,
			tokens:      0,
			wantErrCode: errors.ErrCodeFeatureLocked,
		},
		{
			name:        "avulsa consumes its token",
			plan:        subscription.PlanAvulsa,
			tokens:      1,
			wantBalance: 0,
		},
		{
			name:        "mestre submits and decrements",
			plan:        subscription.PlanMestre,
			tokens:      6,
			wantBalance: 5,
		},
		{
			name:        "mestre submits even at zero balance",
			plan:        subscription.PlanMestre,
			tokens:      0,
			wantBalance: 0,
		},
		{
			name:        "private submits without tokens",
			plan:        subscription.PlanPrivate,
			tokens:      0,
			wantBalance: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEssayFixture(t, tt.plan, tt.tokens)
			ctx := context.Background()

			e, err := f.service.Submit(ctx, f.student.ID, f.theme.ID, "uploads/essays/redacao.pdf")

			if tt.wantErrCode != "" {
				if err == nil {
					t.Fatal("Submit() expected error, got nil")
				}
				if code := appErrCode(t, err); code != tt.wantErrCode {
					t.Errorf("error code = %v, want %v", code, tt.wantErrCode)
				}
				if len(f.repo.Essays) != 0 {
					t.Errorf("rejected submission stored %d essays, want 0", len(f.repo.Essays))
				}
				return
			}

			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if e.Correction.Status != essay.CorrectionPending {
				t.Errorf("correction status = %v, want %v", e.Correction.Status, essay.CorrectionPending)
			}

			sub, _ := f.subRepo.GetByUserID(ctx, f.student.ID)
			if sub.TokensAvailable != tt.wantBalance {
				t.Errorf("balance = %d, want %d", sub.TokensAvailable, tt.wantBalance)
			}

			if len(f.mailer.EssayAlerts) != 1 {
				t.Fatalf("sent %d professor alerts, want 1", len(f.mailer.EssayAlerts))
			}
			if f.mailer.EssayAlerts[0][0] != "prof@example.com" {
				t.Errorf("alert recipients = %v, want the professor", f.mailer.EssayAlerts[0])
			}
		})
	}
}

func TestEssayService_SubmitUnknownTheme(t *testing.T) {
	f := newEssayFixture(t, subscription.PlanMestre, 6)

	if _, err := f.service.Submit(context.Background(), f.student.ID, 999, "uploads/essays/x.pdf"); err == nil {
		t.Fatal("Submit() with an unknown theme should fail")
	}
}

func TestEssayService_SubmitSurvivesMailFailure(t *testing.T) {
	f := newEssayFixture(t, subscription.PlanMestre, 6)
	f.mailer.SendError = fmt.Errorf("sendgrid unavailable")

	e, err := f.service.Submit(context.Background(), f.student.ID, f.theme.ID, "uploads/essays/redacao.pdf")
	if err != nil {
		t.Fatalf("Submit() error = %v, notification failure must not fail the submission", err)
	}
	if e.ID == 0 {
		t.Error("essay was not stored")
	}
}

func TestEssayService_GetOwnership(t *testing.T) {
	f := newEssayFixture(t, subscription.PlanMestre, 6)
	ctx := context.Background()

	e, err := f.service.Submit(ctx, f.student.ID, f.theme.ID, "uploads/essays/redacao.pdf")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	tests := []struct {
		name        string
		requesterID int64
		staff       bool
		wantErr     bool
	}{
		{
			name:        "owner reads own essay",
			requesterID: f.student.ID,
			wantErr:     false,
		},
		{
			name:        "another student is rejected",
			requesterID: f.student.ID + 100,
			wantErr:     true,
		},
		{
			name:        "staff reads any essay",
			requesterID: f.student.ID + 100,
			staff:       true,
			wantErr:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Get(ctx, tt.requesterID, tt.staff, e.ID)
			if (err != nil) != tt.wantErr {
				t.Errorf("Get() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEssayService_CompleteCorrection(t *testing.T) {
	score := 880

	tests := []struct {
		name    string
		status  string
		score   *int
		wantErr bool
	}{
		{
			name:    "pending is not a terminal status",
			status:  essay.CorrectionPending,
			wantErr: true,
		},
		{
			name:    "done requires a score",
			status:  essay.CorrectionDone,
			wantErr: true,
		},
		{
			name:   "done with score",
			status: essay.CorrectionDone,
			score:  &score,
		},
		{
			name:   "rejected needs no score",
			status: essay.CorrectionRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEssayFixture(t, subscription.PlanMestre, 6)
			ctx := context.Background()

			e, err := f.service.Submit(ctx, f.student.ID, f.theme.ID, "uploads/essays/redacao.pdf")
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}

			got, err := f.service.CompleteCorrection(ctx, e.ID, 42, tt.status, tt.score,
				"uploads/corrections/c.pdf", "")

			if (err != nil) != tt.wantErr {
				t.Fatalf("CompleteCorrection() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if got.Correction.Status != tt.status {
				t.Errorf("status = %v, want %v", got.Correction.Status, tt.status)
			}
			if got.Correction.AssignedTo == nil || *got.Correction.AssignedTo != 42 {
				t.Error("correction should record the professor")
			}
			if got.Correction.CompletedAt == nil {
				t.Error("CompletedAt should be stamped")
			}

			// Corrections are written once.
			_, err = f.service.CompleteCorrection(ctx, e.ID, 42, essay.CorrectionRejected, nil, "", "")
			if err == nil {
				t.Fatal("second CompleteCorrection() should fail")
			}
			if code := appErrCode(t, err); code != errors.ErrCodeConflict {
				t.Errorf("error code = %v, want %v", code, errors.ErrCodeConflict)
			}
		})
	}
}

func TestEssayService_NotifyProfessors(t *testing.T) {
	f := newEssayFixture(t, subscription.PlanMestre, 6)
	ctx := context.Background()

	e, err := f.service.Submit(ctx, f.student.ID, f.theme.ID, "uploads/essays/redacao.pdf")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if err := f.service.NotifyProfessors(ctx, e.ID); err != nil {
		t.Fatalf("NotifyProfessors() error = %v", err)
	}
	if len(f.mailer.EssayAlerts) != 2 {
		t.Errorf("sent %d alerts, want 2 (submission plus resend)", len(f.mailer.EssayAlerts))
	}

	// Unlike the automatic send, a resend surfaces mailer failures.
	f.mailer.SendError = fmt.Errorf("sendgrid unavailable")
	if err := f.service.NotifyProfessors(ctx, e.ID); err == nil {
		t.Error("NotifyProfessors() should report the mail failure")
	}
}

func TestEssayService_RetireTheme(t *testing.T) {
	f := newEssayFixture(t, subscription.PlanMestre, 6)
	ctx := context.Background()

	if err := f.service.RetireTheme(ctx, f.theme.ID); err != nil {
		t.Fatalf("RetireTheme() error = %v", err)
	}

	active, err := f.service.ListThemes(ctx, true)
	if err != nil {
		t.Fatalf("ListThemes() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active themes = %d, want 0 after retirement", len(active))
	}

	all, err := f.service.ListThemes(ctx, false)
	if err != nil {
		t.Fatalf("ListThemes() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("all themes = %d, want 1 (retired themes are kept)", len(all))
	}
}
