package services

import (
	"context"
	"testing"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/testutil"
)

func newSubscriptionService(repo subscription.Repository) *SubscriptionService {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewSubscriptionService(repo, log)
}

func TestNeedsMonthlyReset(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		last *time.Time
		want bool
	}{
		{
			name: "never reset",
			last: nil,
			want: true,
		},
		{
			name: "reset earlier this month",
			last: timePtr(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)),
			want: false,
		},
		{
			name: "reset last month",
			last: timePtr(time.Date(2024, time.February, 28, 23, 59, 0, 0, time.UTC)),
			want: true,
		},
		{
			name: "same month last year",
			last: timePtr(time.Date(2023, time.March, 15, 10, 0, 0, 0, time.UTC)),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsMonthlyReset(tt.last, now); got != tt.want {
				t.Errorf("needsMonthlyReset() = %v, want %v", got, tt.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestSubscriptionService_MonthlyReset(t *testing.T) {
	repo := testutil.NewMockSubscriptionRepository()
	service := newSubscriptionService(repo)

	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	ctx := context.Background()
	stale := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	repo.Create(ctx, &subscription.Subscription{
		UserID:          1,
		Type:            subscription.PlanMestre,
		Status:          subscription.StatusActive,
		TokensAvailable: 0,
		LastTokenReset:  &stale,
	})

	sub, err := service.GetForUser(ctx, 1)
	if err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}
	if sub.TokensAvailable != subscription.MonthlyQuota {
		t.Errorf("TokensAvailable = %d, want %d", sub.TokensAvailable, subscription.MonthlyQuota)
	}
	if sub.LastTokenReset == nil || !sub.LastTokenReset.Equal(now) {
		t.Errorf("LastTokenReset = %v, want %v", sub.LastTokenReset, now)
	}

	// Consuming within the same month must not trigger another reset.
	if _, err := service.ConsumeToken(ctx, 1); err != nil {
		t.Fatalf("ConsumeToken() error = %v", err)
	}
	sub, err = service.GetForUser(ctx, 1)
	if err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}
	if sub.TokensAvailable != subscription.MonthlyQuota-1 {
		t.Errorf("TokensAvailable = %d, want %d", sub.TokensAvailable, subscription.MonthlyQuota-1)
	}
}

func TestSubscriptionService_MonthlyResetSkipsOtherPlans(t *testing.T) {
	repo := testutil.NewMockSubscriptionRepository()
	service := newSubscriptionService(repo)

	ctx := context.Background()
	repo.Create(ctx, &subscription.Subscription{
		UserID:          1,
		Type:            subscription.PlanAvulsa,
		Status:          subscription.StatusActive,
		TokensAvailable: 0,
	})

	sub, err := service.GetForUser(ctx, 1)
	if err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}
	if sub.TokensAvailable != 0 {
		t.Errorf("avulsa balance = %d, want 0 (no monthly reset)", sub.TokensAvailable)
	}
}

func TestSubscriptionService_LegacyMigration(t *testing.T) {
	repo := testutil.NewMockSubscriptionRepository()
	service := newSubscriptionService(repo)

	ctx := context.Background()
	repo.Create(ctx, &subscription.Subscription{
		UserID:          1,
		Type:            subscription.PlanPrivate,
		Status:          subscription.StatusActive,
		LegacyUnlimited: true,
	})

	sub, err := service.GetForUser(ctx, 1)
	if err != nil {
		t.Fatalf("GetForUser() error = %v", err)
	}
	if sub.LegacyUnlimited {
		t.Error("legacy flag should be cleared")
	}
	if sub.TokensAvailable != subscription.MonthlyQuota {
		t.Errorf("TokensAvailable = %d, want %d", sub.TokensAvailable, subscription.MonthlyQuota)
	}

	// A second pass must not re-credit the balance.
	service.ConsumeToken(ctx, 1)
	sub, _ = service.GetForUser(ctx, 1)
	if sub.TokensAvailable != subscription.MonthlyQuota-1 {
		t.Errorf("TokensAvailable = %d, want %d after idempotent re-check", sub.TokensAvailable, subscription.MonthlyQuota-1)
	}
}

func TestSubscriptionService_ConsumeToken(t *testing.T) {
	repo := testutil.NewMockSubscriptionRepository()
	service := newSubscriptionService(repo)

	ctx := context.Background()
	repo.Create(ctx, &subscription.Subscription{
		UserID:          1,
		Type:            subscription.PlanAvulsa,
		Status:          subscription.StatusActive,
		TokensAvailable: 1,
	})

	consumed, err := service.ConsumeToken(ctx, 1)
	if err != nil {
		t.Fatalf("ConsumeToken() error = %v", err)
	}
	if !consumed {
		t.Error("first consume should succeed")
	}

	consumed, err = service.ConsumeToken(ctx, 1)
	if err != nil {
		t.Fatalf("ConsumeToken() error = %v", err)
	}
	if consumed {
		t.Error("consume at zero balance should report false")
	}

	sub, _ := service.GetForUser(ctx, 1)
	if sub.TokensAvailable != 0 {
		t.Errorf("TokensAvailable = %d, want 0 (never negative)", sub.TokensAvailable)
	}
}

func TestSubscriptionService_ChangePlan(t *testing.T) {
	repo := testutil.NewMockSubscriptionRepository()
	service := newSubscriptionService(repo)

	ctx := context.Background()
	repo.Create(ctx, &subscription.Subscription{
		UserID: 7,
		Type:   subscription.PlanFree,
		Status: subscription.StatusActive,
	})

	tests := []struct {
		name        string
		newPlan     string
		tokensAdded int
		wantErr     bool
	}{
		{
			name:        "unknown plan rejected",
			newPlan:     "unlimited",
			tokensAdded: 0,
			wantErr:     true,
		},
		{
			name:        "negative token grant rejected",
			newPlan:     subscription.PlanAvulsa,
			tokensAdded: -1,
			wantErr:     true,
		},
		{
			name:        "upgrade to avulsa with a token",
			newPlan:     subscription.PlanAvulsa,
			tokensAdded: 1,
			wantErr:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ChangePlan(ctx, 7, 99, tt.newPlan, "manual", tt.tokensAdded)
			if (err != nil) != tt.wantErr {
				t.Errorf("ChangePlan() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	sub, _ := repo.GetByUserID(ctx, 7)
	if sub.Type != subscription.PlanAvulsa {
		t.Errorf("plan = %v, want %v", sub.Type, subscription.PlanAvulsa)
	}
	if sub.TokensAvailable != 1 {
		t.Errorf("TokensAvailable = %d, want 1", sub.TokensAvailable)
	}

	changes, err := service.PlanChanges(ctx, 7)
	if err != nil {
		t.Fatalf("PlanChanges() error = %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("audit trail has %d entries, want 1", len(changes))
	}
	if changes[0].OldPlan != subscription.PlanFree || changes[0].NewPlan != subscription.PlanAvulsa {
		t.Errorf("audit entry %s -> %s, want free -> avulsa", changes[0].OldPlan, changes[0].NewPlan)
	}
	if changes[0].ChangedBy != 99 {
		t.Errorf("ChangedBy = %d, want 99", changes[0].ChangedBy)
	}
}

func TestSubscriptionService_Cancel(t *testing.T) {
	repo := testutil.NewMockSubscriptionRepository()
	service := newSubscriptionService(repo)

	ctx := context.Background()
	repo.Create(ctx, &subscription.Subscription{
		UserID:          1,
		Type:            subscription.PlanMestre,
		Status:          subscription.StatusActive,
		TokensAvailable: 3,
	})

	if err := service.Cancel(ctx, 1); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	// Cancelling twice is a no-op.
	if err := service.Cancel(ctx, 1); err != nil {
		t.Fatalf("second Cancel() error = %v", err)
	}

	sub, _ := repo.GetByUserID(ctx, 1)
	if sub.Status != subscription.StatusCancelled {
		t.Errorf("status = %v, want %v", sub.Status, subscription.StatusCancelled)
	}

	ok, err := service.HasFeature(ctx, 1, subscription.FeatureEnvioRedacao)
	if err != nil {
		t.Fatalf("HasFeature() error = %v", err)
	}
	if ok {
		t.Error("cancelled subscription should not grant features")
	}
}

func TestSubscriptionService_RunMaintenance(t *testing.T) {
	repo := testutil.NewMockSubscriptionRepository()
	service := newSubscriptionService(repo)

	now := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	ctx := context.Background()
	stale := time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC)
	repo.Create(ctx, &subscription.Subscription{
		UserID: 1, Type: subscription.PlanMestre,
		Status: subscription.StatusActive, LastTokenReset: &stale,
	})
	repo.Create(ctx, &subscription.Subscription{
		UserID: 2, Type: subscription.PlanMestre,
		Status: subscription.StatusActive,
	})
	repo.Create(ctx, &subscription.Subscription{
		UserID: 3, Type: subscription.PlanPartner,
		Status: subscription.StatusActive, LegacyUnlimited: true,
	})
	repo.Create(ctx, &subscription.Subscription{
		UserID: 4, Type: subscription.PlanFree,
		Status: subscription.StatusActive,
	})

	report, err := service.RunMaintenance(ctx)
	if err != nil {
		t.Fatalf("RunMaintenance() error = %v", err)
	}
	if report.Checked != 3 {
		t.Errorf("Checked = %d, want 3", report.Checked)
	}
	if report.MonthlyResets != 2 {
		t.Errorf("MonthlyResets = %d, want 2", report.MonthlyResets)
	}
	if report.LegacyMigrations != 1 {
		t.Errorf("LegacyMigrations = %d, want 1", report.LegacyMigrations)
	}

	// A second run in the same month applies nothing.
	report, err = service.RunMaintenance(ctx)
	if err != nil {
		t.Fatalf("RunMaintenance() error = %v", err)
	}
	if report.MonthlyResets != 0 || report.LegacyMigrations != 0 {
		t.Errorf("second run applied %d resets and %d migrations, want 0 and 0",
			report.MonthlyResets, report.LegacyMigrations)
	}
}
