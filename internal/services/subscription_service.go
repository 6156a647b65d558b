package services

import (
	"context"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/pkg/metrics"
)

// SubscriptionService implements subscription.Service
type SubscriptionService struct {
	repo   subscription.Repository
	logger *logger.Logger
	now    func() time.Time
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repo subscription.Repository, log *logger.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

// GetForUser returns the user's subscription, refreshed through ensureCurrent
// so callers always observe the post-reset, post-migration state.
func (s *SubscriptionService) GetForUser(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	sub, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ensureCurrent(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// EntitlementsForUser resolves the feature snapshot for a user
func (s *SubscriptionService) EntitlementsForUser(ctx context.Context, userID int64) (subscription.Entitlements, error) {
	sub, err := s.GetForUser(ctx, userID)
	if err != nil {
		return subscription.Entitlements{}, err
	}
	return subscription.ResolveEntitlements(sub), nil
}

// HasFeature checks a single feature for a user
func (s *SubscriptionService) HasFeature(ctx context.Context, userID int64, feature subscription.Feature) (bool, error) {
	sub, err := s.GetForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if sub.Status != subscription.StatusActive {
		return false, nil
	}
	return subscription.HasFeatureAccess(sub.Type, feature, sub.HasActiveToken()), nil
}

// ConsumeToken consumes one correction token through the repository's
// conditional decrement, so concurrent submissions can never drive the
// balance below zero.
func (s *SubscriptionService) ConsumeToken(ctx context.Context, userID int64) (bool, error) {
	sub, err := s.GetForUser(ctx, userID)
	if err != nil {
		return false, err
	}

	consumed, err := s.repo.ConsumeToken(ctx, sub.ID)
	if err != nil {
		return false, err
	}
	if consumed {
		metrics.RecordTokenConsumed(sub.Type)
	}
	return consumed, nil
}

// ChangePlan assigns a new plan to a student, credits any granted tokens and
// appends the audit record.
func (s *SubscriptionService) ChangePlan(ctx context.Context, studentID, changedBy int64, newPlan, reason string, tokensAdded int) (*subscription.Subscription, error) {
	if !subscription.IsValidPlan(newPlan) {
		return nil, errors.BadRequest("Unknown plan type: " + newPlan)
	}
	if tokensAdded < 0 {
		return nil, errors.BadRequest("tokensAdded must not be negative")
	}

	sub, err := s.repo.GetByUserID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	oldPlan := sub.Type
	sub.Type = newPlan
	sub.Status = subscription.StatusActive
	sub.TokensAvailable += tokensAdded
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	entry := &subscription.PlanChangeLog{
		StudentID:   studentID,
		OldPlan:     oldPlan,
		NewPlan:     newPlan,
		ChangedBy:   changedBy,
		ChangedAt:   s.now(),
		Reason:      reason,
		TokensAdded: tokensAdded,
	}
	if err := s.repo.AppendPlanChange(ctx, entry); err != nil {
		s.logger.ErrorWithErr(err, "Failed to append plan change log")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"student_id": studentID,
		"old_plan":   oldPlan,
		"new_plan":   newPlan,
		"changed_by": changedBy,
	}).Info("Plan changed")

	return sub, nil
}

// Cancel marks the subscription cancelled in place; the row is kept
func (s *SubscriptionService) Cancel(ctx context.Context, userID int64) error {
	sub, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if sub.Status == subscription.StatusCancelled {
		return nil
	}
	sub.Status = subscription.StatusCancelled
	return s.repo.Update(ctx, sub)
}

// PlanChanges returns the audit trail for a student
func (s *SubscriptionService) PlanChanges(ctx context.Context, studentID int64) ([]*subscription.PlanChangeLog, error) {
	return s.repo.ListPlanChanges(ctx, studentID)
}

// RunMaintenance applies the monthly reset and legacy migration across every
// eligible subscription. Both steps are idempotent, so the job can run as
// often as scheduled without double-crediting anyone.
func (s *SubscriptionService) RunMaintenance(ctx context.Context) (*subscription.MaintenanceReport, error) {
	subs, err := s.repo.ListForMaintenance(ctx)
	if err != nil {
		return nil, err
	}

	report := &subscription.MaintenanceReport{Checked: len(subs)}
	for _, sub := range subs {
		applied, err := s.ensureCurrent(ctx, sub)
		if err != nil {
			s.logger.WithFields(map[string]interface{}{
				"subscription_id": sub.ID,
			}).ErrorWithErr(err, "Token maintenance failed for subscription")
			continue
		}
		report.MonthlyResets += applied.monthlyResets
		report.LegacyMigrations += applied.legacyMigrations
	}

	s.logger.WithFields(map[string]interface{}{
		"checked":           report.Checked,
		"monthly_resets":    report.MonthlyResets,
		"legacy_migrations": report.LegacyMigrations,
	}).Info("Token maintenance completed")

	return report, nil
}

type maintenanceApplied struct {
	monthlyResets    int
	legacyMigrations int
}

// ensureCurrent brings a subscription up to date: clears the deprecated
// unlimited flag and applies the monthly quota reset. The subscription is
// mutated in place to reflect the stored state.
//
// A subscription unread for several months jumps straight to the current
// quota; there is no multi-month backfill.
func (s *SubscriptionService) ensureCurrent(ctx context.Context, sub *subscription.Subscription) (maintenanceApplied, error) {
	var applied maintenanceApplied

	// Legacy migration: private/partner rows that still carry the unlimited
	// flag get a finite balance. Re-running is a no-op once the flag is gone.
	if sub.LegacyUnlimited && (sub.Type == subscription.PlanPrivate || sub.Type == subscription.PlanPartner) {
		if err := s.repo.ClearLegacyUnlimited(ctx, sub.ID, subscription.MonthlyQuota); err != nil {
			return applied, err
		}
		sub.LegacyUnlimited = false
		sub.TokensAvailable = subscription.MonthlyQuota
		applied.legacyMigrations++

		s.logger.WithFields(map[string]interface{}{
			"subscription_id": sub.ID,
			"plan":            sub.Type,
		}).Info("Migrated legacy unlimited subscription")
	}

	// Monthly reset for the recurring plan, keyed on calendar month/year.
	if sub.Type == subscription.PlanMestre && sub.Status == subscription.StatusActive {
		now := s.now()
		if needsMonthlyReset(sub.LastTokenReset, now) {
			if err := s.repo.ApplyMonthlyReset(ctx, sub.ID, subscription.MonthlyQuota, now); err != nil {
				return applied, err
			}
			sub.TokensAvailable = subscription.MonthlyQuota
			reset := now
			sub.LastTokenReset = &reset
			applied.monthlyResets++
			metrics.RecordTokenReset()

			s.logger.WithFields(map[string]interface{}{
				"subscription_id": sub.ID,
				"quota":           subscription.MonthlyQuota,
			}).Info("Monthly token quota reset")
		}
	}

	return applied, nil
}

// needsMonthlyReset reports whether the wall-clock month or year differs from
// the last reset stamp. An unset stamp always resets.
func needsMonthlyReset(last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}
	return last.Year() != now.Year() || last.Month() != now.Month()
}
