package services

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
	"github.com/mestre-da-redacao/backend/internal/domain/user"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/testutil"
)

func newUserService(userRepo *testutil.MockUserRepository, subRepo *testutil.MockSubscriptionRepository) user.Service {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewUserService(userRepo, subRepo, log, bcrypt.MinCost)
}

func TestUserService_Register(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	subRepo := testutil.NewMockSubscriptionRepository()
	service := newUserService(userRepo, subRepo)
	ctx := context.Background()

	u, err := service.Register(ctx, "  Aluno@Example.COM ", "Aluno", "senha123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if u.Email != "aluno@example.com" {
		t.Errorf("email = %v, want normalized aluno@example.com", u.Email)
	}
	if u.Role != user.RoleStudent {
		t.Errorf("role = %v, want %v", u.Role, user.RoleStudent)
	}
	if u.PasswordHash == "senha123" {
		t.Error("password must be stored hashed")
	}

	// Registration provisions the free subscription.
	sub, err := subRepo.GetByUserID(ctx, u.ID)
	if err != nil {
		t.Fatalf("new student has no subscription: %v", err)
	}
	if sub.Type != subscription.PlanFree {
		t.Errorf("plan = %v, want %v", sub.Type, subscription.PlanFree)
	}
	if sub.Status != subscription.StatusActive {
		t.Errorf("status = %v, want %v", sub.Status, subscription.StatusActive)
	}
	if sub.TokensAvailable != 0 {
		t.Errorf("TokensAvailable = %d, want 0", sub.TokensAvailable)
	}

	// Duplicate email is rejected.
	if _, err := service.Register(ctx, "aluno@example.com", "Outro", "senha456"); err == nil {
		t.Error("Register() with a taken email should fail")
	}
}

func TestUserService_CreateStaff(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		wantErr bool
	}{
		{
			name:    "professor account",
			role:    user.RoleProfessor,
			wantErr: false,
		},
		{
			name:    "admin account",
			role:    user.RoleAdmin,
			wantErr: false,
		},
		{
			name:    "student role rejected",
			role:    user.RoleStudent,
			wantErr: true,
		},
		{
			name:    "arbitrary role rejected",
			role:    "superuser",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := testutil.NewMockUserRepository()
			subRepo := testutil.NewMockSubscriptionRepository()
			service := newUserService(userRepo, subRepo)
			ctx := context.Background()

			u, err := service.CreateStaff(ctx, "staff@example.com", "Staff", "senha123", tt.role)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateStaff() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if u.Role != tt.role {
				t.Errorf("role = %v, want %v", u.Role, tt.role)
			}
			// Staff accounts do not get subscriptions.
			if _, err := subRepo.GetByUserID(ctx, u.ID); err == nil {
				t.Error("staff account should not have a subscription")
			}
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	subRepo := testutil.NewMockSubscriptionRepository()
	service := newUserService(userRepo, subRepo)
	ctx := context.Background()

	if _, err := service.Register(ctx, "aluno@example.com", "Aluno", "senha123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  bool
	}{
		{
			name:     "valid credentials",
			email:    "aluno@example.com",
			password: "senha123",
			wantErr:  false,
		},
		{
			name:     "case-insensitive email",
			email:    "ALUNO@example.com",
			password: "senha123",
			wantErr:  false,
		},
		{
			name:     "wrong password",
			email:    "aluno@example.com",
			password: "senha999",
			wantErr:  true,
		},
		{
			name:     "unknown email",
			email:    "ninguem@example.com",
			password: "senha123",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := service.Authenticate(ctx, tt.email, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && u == nil {
				t.Error("Authenticate() returned nil user")
			}
		})
	}
}

func TestUserService_ProfessorEmails(t *testing.T) {
	userRepo := testutil.NewMockUserRepository()
	subRepo := testutil.NewMockSubscriptionRepository()
	service := newUserService(userRepo, subRepo)
	ctx := context.Background()

	service.Register(ctx, "aluno@example.com", "Aluno", "senha123")
	service.CreateStaff(ctx, "prof-b@example.com", "B", "senha123", user.RoleProfessor)
	service.CreateStaff(ctx, "prof-a@example.com", "A", "senha123", user.RoleProfessor)
	service.CreateStaff(ctx, "admin@example.com", "Admin", "senha123", user.RoleAdmin)

	emails, err := service.ProfessorEmails(ctx)
	if err != nil {
		t.Fatalf("ProfessorEmails() error = %v", err)
	}
	if len(emails) != 2 {
		t.Fatalf("got %d emails, want 2 (students and admins excluded)", len(emails))
	}
	if emails[0] != "prof-a@example.com" || emails[1] != "prof-b@example.com" {
		t.Errorf("emails = %v, want sorted professor addresses", emails)
	}
}
