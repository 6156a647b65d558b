package subscription

import (
	"context"
	"time"
)

// Repository defines the interface for subscription data access
type Repository interface {
	// Create creates a new subscription
	Create(ctx context.Context, s *Subscription) error

	// GetByID retrieves a subscription by ID
	GetByID(ctx context.Context, id int64) (*Subscription, error)

	// GetByUserID retrieves the subscription belonging to a user
	GetByUserID(ctx context.Context, userID int64) (*Subscription, error)

	// Update updates plan type, status and token fields
	Update(ctx context.Context, s *Subscription) error

	// ConsumeToken atomically decrements the token balance by one, but only
	// while the balance is positive. It reports whether a token was consumed.
	ConsumeToken(ctx context.Context, id int64) (bool, error)

	// AddTokens credits n tokens to the balance
	AddTokens(ctx context.Context, id int64, n int) error

	// ApplyMonthlyReset sets the balance to quota and stamps lastTokenReset
	ApplyMonthlyReset(ctx context.Context, id int64, quota int, now time.Time) error

	// ClearLegacyUnlimited rewrites a deprecated unlimited subscription to a
	// finite balance and removes the flag
	ClearLegacyUnlimited(ctx context.Context, id int64, quota int) error

	// ListForMaintenance lists active subscriptions whose plan participates in
	// monthly resets or the legacy migration
	ListForMaintenance(ctx context.Context) ([]*Subscription, error)

	// AppendPlanChange appends an audit record; records are never modified
	AppendPlanChange(ctx context.Context, log *PlanChangeLog) error

	// ListPlanChanges lists the audit trail for a student, newest first
	ListPlanChanges(ctx context.Context, studentID int64) ([]*PlanChangeLog, error)
}

// Service defines subscription business operations
type Service interface {
	// GetForUser returns the user's subscription with the monthly reset and
	// legacy migration already applied
	GetForUser(ctx context.Context, userID int64) (*Subscription, error)

	// EntitlementsForUser resolves the feature snapshot for a user
	EntitlementsForUser(ctx context.Context, userID int64) (Entitlements, error)

	// HasFeature checks a single feature for a user
	HasFeature(ctx context.Context, userID int64, feature Feature) (bool, error)

	// ConsumeToken consumes one correction token, reporting whether one was
	// available
	ConsumeToken(ctx context.Context, userID int64) (bool, error)

	// ChangePlan assigns a new plan to a student and appends an audit record
	ChangePlan(ctx context.Context, studentID, changedBy int64, newPlan, reason string, tokensAdded int) (*Subscription, error)

	// Cancel marks the subscription cancelled in place
	Cancel(ctx context.Context, userID int64) error

	// RunMaintenance applies the monthly reset and legacy migration across all
	// eligible subscriptions
	RunMaintenance(ctx context.Context) (*MaintenanceReport, error)

	// PlanChanges returns the audit trail for a student
	PlanChanges(ctx context.Context, studentID int64) ([]*PlanChangeLog, error)
}
