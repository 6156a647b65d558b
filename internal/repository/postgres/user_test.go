package postgres

import (
	"context"
	"testing"

	"github.com/mestre-da-redacao/backend/internal/domain/user"
	"github.com/mestre-da-redacao/backend/internal/testutil"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &user.User{
		Email:        "aluno@example.com",
		Name:         "Aluno",
		PasswordHash: "hash",
		Role:         user.RoleStudent,
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if u.ID == 0 {
		t.Fatal("Create() did not assign an ID")
	}

	// The email column is unique.
	dup := &user.User{Email: "aluno@example.com", Name: "Outro", PasswordHash: "hash", Role: user.RoleStudent}
	if err := repo.Create(ctx, dup); err == nil {
		t.Error("Create() with a duplicate email should fail")
	}

	byID, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Email != u.Email || byID.Role != user.RoleStudent {
		t.Errorf("GetByID() = %+v", byID)
	}

	byEmail, err := repo.GetByEmail(ctx, "aluno@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("GetByEmail() ID = %d, want %d", byEmail.ID, u.ID)
	}

	if _, err := repo.GetByEmail(ctx, "ninguem@example.com"); err == nil {
		t.Error("GetByEmail() for a missing email should fail")
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &user.User{Email: "aluno@example.com", Name: "Aluno", PasswordHash: "velho", Role: user.RoleStudent}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.UpdatePassword(ctx, u.ID, "novo"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, u.ID)
	if got.PasswordHash != "novo" {
		t.Errorf("PasswordHash = %v, want novo", got.PasswordHash)
	}
}

func TestUserRepository_ListEmailsByRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewUserRepository(db)
	ctx := context.Background()

	seed := []*user.User{
		{Email: "prof-b@example.com", Name: "B", PasswordHash: "x", Role: user.RoleProfessor},
		{Email: "aluno@example.com", Name: "Aluno", PasswordHash: "x", Role: user.RoleStudent},
		{Email: "prof-a@example.com", Name: "A", PasswordHash: "x", Role: user.RoleProfessor},
		{Email: "admin@example.com", Name: "Admin", PasswordHash: "x", Role: user.RoleAdmin},
	}
	for _, u := range seed {
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	emails, err := repo.ListEmailsByRole(ctx, user.RoleProfessor)
	if err != nil {
		t.Fatalf("ListEmailsByRole() error = %v", err)
	}
	want := []string{"prof-a@example.com", "prof-b@example.com"}
	if len(emails) != len(want) {
		t.Fatalf("got %d emails, want %d", len(emails), len(want))
	}
	for i := range want {
		if emails[i] != want[i] {
			t.Errorf("emails[%d] = %v, want %v", i, emails[i], want[i])
		}
	}
}
