package subscription

import "time"

// Subscription represents a student's plan and correction token balance
type Subscription struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	TokensAvailable int        `json:"tokens_available"`
	LegacyUnlimited bool       `json:"-"` // deprecated flag, cleared by migration
	LastTokenReset  *time.Time `json:"last_token_reset,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Plan types
const (
	PlanFree    = "free"
	PlanAvulsa  = "avulsa"
	PlanMestre  = "mestre"
	PlanPrivate = "private"
	PlanPartner = "partner"
)

// Subscription status. Subscriptions are never hard-deleted, only cancelled.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// MonthlyQuota is the correction token quota granted on each monthly reset
// and on migration of legacy unlimited subscriptions.
const MonthlyQuota = 6

// HasActiveToken reports whether the subscription holds at least one token.
func (s *Subscription) HasActiveToken() bool {
	return s.TokensAvailable > 0
}

// IsValidPlan reports whether t is a known plan type.
func IsValidPlan(t string) bool {
	switch t {
	case PlanFree, PlanAvulsa, PlanMestre, PlanPrivate, PlanPartner:
		return true
	}
	return false
}

// PlanChangeLog is an append-only audit record of a plan change.
type PlanChangeLog struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"student_id"`
	OldPlan     string    `json:"old_plan"`
	NewPlan     string    `json:"new_plan"`
	ChangedBy   int64     `json:"changed_by"`
	ChangedAt   time.Time `json:"changed_at"`
	Reason      string    `json:"reason,omitempty"`
	TokensAdded int       `json:"tokens_added"`
}

// MaintenanceReport summarizes a token maintenance run.
type MaintenanceReport struct {
	Checked          int `json:"checked"`
	MonthlyResets    int `json:"monthly_resets"`
	LegacyMigrations int `json:"legacy_migrations"`
}
