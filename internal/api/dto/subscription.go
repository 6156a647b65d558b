package dto

import "github.com/mestre-da-redacao/backend/internal/domain/subscription"

// SubscriptionDTO represents a subscription in responses
type SubscriptionDTO struct {
	ID              int64  `json:"id"`
	Type            string `json:"type"`
	Status          string `json:"status"`
	TokensAvailable int    `json:"tokensAvailable"`
	LastTokenReset  string `json:"lastTokenReset,omitempty"`
}

// NewSubscriptionDTO maps a domain subscription to its response shape
func NewSubscriptionDTO(s *subscription.Subscription) *SubscriptionDTO {
	d := &SubscriptionDTO{
		ID:              s.ID,
		Type:            s.Type,
		Status:          s.Status,
		TokensAvailable: s.TokensAvailable,
	}
	if s.LastTokenReset != nil {
		d.LastTokenReset = s.LastTokenReset.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return d
}

// ChangePlanRequest assigns a new plan to a student
type ChangePlanRequest struct {
	StudentID   int64  `json:"studentId" validate:"required"`
	NewPlan     string `json:"newPlan" validate:"required,oneof=free avulsa mestre private partner"`
	Reason      string `json:"reason,omitempty"`
	TokensAdded int    `json:"tokensAdded" validate:"gte=0"`
}
