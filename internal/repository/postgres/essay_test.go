package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/essay"
	"github.com/mestre-da-redacao/backend/internal/testutil"
)

func TestEssayRepository_CreateAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	users := NewUserRepository(db)
	repo := NewEssayRepository(db)
	ctx := context.Background()

	u := seedUser(t, users, "aluno@example.com")
	theme := &essay.Theme{Title: "Tema", Description: "Desc", Active: true, CreatedAt: time.Now()}
	if err := repo.CreateTheme(ctx, theme); err != nil {
		t.Fatalf("CreateTheme() error = %v", err)
	}

	base := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
	first := &essay.Essay{
		UserID: u.ID, ThemeID: theme.ID, FileURL: "uploads/essays/1.pdf",
		SubmittedAt: base, Correction: essay.Correction{Status: essay.CorrectionPending},
	}
	second := &essay.Essay{
		UserID: u.ID, ThemeID: theme.ID, FileURL: "uploads/essays/2.pdf",
		SubmittedAt: base.Add(time.Hour), Correction: essay.Correction{Status: essay.CorrectionPending},
	}
	for _, e := range []*essay.Essay{first, second} {
		if err := repo.CreateEssay(ctx, e); err != nil {
			t.Fatalf("CreateEssay() error = %v", err)
		}
	}

	// Students see their essays newest first.
	mine, total, err := repo.ListByUser(ctx, u.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if total != 2 || len(mine) != 2 {
		t.Fatalf("ListByUser() = %d rows, total %d, want 2", len(mine), total)
	}
	if mine[0].FileURL != "uploads/essays/2.pdf" {
		t.Errorf("first row = %v, want the latest submission", mine[0].FileURL)
	}

	// The correction queue is oldest first.
	pending, _, err := repo.ListPending(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if pending[0].FileURL != "uploads/essays/1.pdf" {
		t.Errorf("first pending = %v, want the oldest submission", pending[0].FileURL)
	}
}

func TestEssayRepository_UpdateCorrection(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	users := NewUserRepository(db)
	repo := NewEssayRepository(db)
	ctx := context.Background()

	u := seedUser(t, users, "aluno@example.com")
	theme := &essay.Theme{Title: "Tema", Description: "Desc", Active: true, CreatedAt: time.Now()}
	if err := repo.CreateTheme(ctx, theme); err != nil {
		t.Fatalf("CreateTheme() error = %v", err)
	}

	e := &essay.Essay{
		UserID: u.ID, ThemeID: theme.ID, FileURL: "uploads/essays/1.pdf",
		SubmittedAt: time.Now(), Correction: essay.Correction{Status: essay.CorrectionPending},
	}
	if err := repo.CreateEssay(ctx, e); err != nil {
		t.Fatalf("CreateEssay() error = %v", err)
	}

	score := 920
	professor := int64(42)
	done := time.Date(2024, time.May, 2, 15, 0, 0, 0, time.UTC)
	c := essay.Correction{
		Status:            essay.CorrectionDone,
		Score:             &score,
		AssignedTo:        &professor,
		CompletedAt:       &done,
		CorrectionFileURL: "uploads/corrections/1.pdf",
		AudioFileURL:      "uploads/corrections/1.mp3",
	}
	if err := repo.UpdateCorrection(ctx, e.ID, c); err != nil {
		t.Fatalf("UpdateCorrection() error = %v", err)
	}

	got, err := repo.GetEssay(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEssay() error = %v", err)
	}
	if got.Correction.Status != essay.CorrectionDone {
		t.Errorf("status = %v, want done", got.Correction.Status)
	}
	if got.Correction.Score == nil || *got.Correction.Score != 920 {
		t.Errorf("score = %v, want 920", got.Correction.Score)
	}
	if got.Correction.AssignedTo == nil || *got.Correction.AssignedTo != professor {
		t.Errorf("assigned to = %v, want %d", got.Correction.AssignedTo, professor)
	}
	if got.Correction.CompletedAt == nil || got.Correction.CompletedAt.Unix() != done.Unix() {
		t.Errorf("completed at = %v, want %v", got.Correction.CompletedAt, done)
	}
	if got.Correction.AudioFileURL != "uploads/corrections/1.mp3" {
		t.Errorf("audio = %v", got.Correction.AudioFileURL)
	}

	// The corrected essay leaves the pending queue.
	pending, total, err := repo.ListPending(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if total != 0 || len(pending) != 0 {
		t.Errorf("pending queue has %d rows, want 0", len(pending))
	}
}

func TestEssayRepository_Themes(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.CleanupDB(db)

	repo := NewEssayRepository(db)
	ctx := context.Background()

	active := &essay.Theme{Title: "Ativo", Description: "d", Active: true, CreatedAt: time.Now()}
	retired := &essay.Theme{Title: "Aposentado", Description: "d", Active: false, CreatedAt: time.Now()}
	for _, theme := range []*essay.Theme{active, retired} {
		if err := repo.CreateTheme(ctx, theme); err != nil {
			t.Fatalf("CreateTheme() error = %v", err)
		}
	}

	visible, err := repo.ListThemes(ctx, true)
	if err != nil {
		t.Fatalf("ListThemes() error = %v", err)
	}
	if len(visible) != 1 || visible[0].Title != "Ativo" {
		t.Errorf("active themes = %+v, want only Ativo", visible)
	}

	all, err := repo.ListThemes(ctx, false)
	if err != nil {
		t.Fatalf("ListThemes() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all themes = %d, want 2", len(all))
	}
}
