package subscription

import (
	"testing"
	"time"
)

func TestHasFeatureAccess(t *testing.T) {
	tests := []struct {
		name     string
		plan     string
		feature  Feature
		hasToken bool
		want     bool
	}{
		{
			name:    "free can browse themes",
			plan:    PlanFree,
			feature: FeaturePropostas,
			want:    true,
		},
		{
			name:    "free cannot submit essays",
			plan:    PlanFree,
			feature: FeatureEnvioRedacao,
			want:    false,
		},
		{
			name:     "free cannot submit even holding a token",
			plan:     PlanFree,
			feature:  FeatureEnvioRedacao,
			hasToken: true,
			want:     false,
		},
		{
			name:     "avulsa with token can submit",
			plan:     PlanAvulsa,
			feature:  FeatureEnvioRedacao,
			hasToken: true,
			want:     true,
		},
		{
			name:    "avulsa without token cannot submit",
			plan:    PlanAvulsa,
			feature: FeatureEnvioRedacao,
			want:    false,
		},
		{
			name:     "avulsa with token can watch lessons",
			plan:     PlanAvulsa,
			feature:  FeatureVideoaulas,
			hasToken: true,
			want:     true,
		},
		{
			name:    "avulsa without token cannot use chat",
			plan:    PlanAvulsa,
			feature: FeatureChat,
			want:    false,
		},
		{
			name:    "avulsa can always browse themes",
			plan:    PlanAvulsa,
			feature: FeaturePropostas,
			want:    true,
		},
		{
			name:    "mestre submits without a token",
			plan:    PlanMestre,
			feature: FeatureEnvioRedacao,
			want:    true,
		},
		{
			name:    "mestre has materials",
			plan:    PlanMestre,
			feature: FeatureMateriais,
			want:    true,
		},
		{
			name:    "private has full access",
			plan:    PlanPrivate,
			feature: FeatureChat,
			want:    true,
		},
		{
			name:    "partner has full access",
			plan:    PlanPartner,
			feature: FeatureVideoaulas,
			want:    true,
		},
		{
			name:     "unknown plan has no access",
			plan:     "enterprise",
			feature:  FeaturePropostas,
			hasToken: true,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HasFeatureAccess(tt.plan, tt.feature, tt.hasToken)
			if got != tt.want {
				t.Errorf("HasFeatureAccess(%q, %q, %v) = %v, want %v", tt.plan, tt.feature, tt.hasToken, got, tt.want)
			}
		})
	}
}

func TestResolveEntitlements(t *testing.T) {
	sub := &Subscription{
		Type:            PlanAvulsa,
		Status:          StatusActive,
		TokensAvailable: 2,
	}

	ent := ResolveEntitlements(sub)

	if ent.Plan != PlanAvulsa {
		t.Errorf("Plan = %v, want %v", ent.Plan, PlanAvulsa)
	}
	if ent.TokensAvailable != 2 {
		t.Errorf("TokensAvailable = %v, want 2", ent.TokensAvailable)
	}
	if len(ent.Features) != len(Features) {
		t.Errorf("Features has %d entries, want %d", len(ent.Features), len(Features))
	}
	if !ent.Features[FeatureEnvioRedacao] {
		t.Error("avulsa with tokens should have envioRedacao")
	}

	sub.TokensAvailable = 0
	ent = ResolveEntitlements(sub)
	if ent.Features[FeatureEnvioRedacao] {
		t.Error("avulsa without tokens should not have envioRedacao")
	}
	if !ent.Features[FeaturePropostas] {
		t.Error("propostas should stay available without tokens")
	}
}

func TestIsValidPlan(t *testing.T) {
	for _, plan := range []string{PlanFree, PlanAvulsa, PlanMestre, PlanPrivate, PlanPartner} {
		if !IsValidPlan(plan) {
			t.Errorf("IsValidPlan(%q) = false, want true", plan)
		}
	}
	for _, plan := range []string{"", "unlimited", "Mestre"} {
		if IsValidPlan(plan) {
			t.Errorf("IsValidPlan(%q) = true, want false", plan)
		}
	}
}

func TestHasActiveToken(t *testing.T) {
	s := &Subscription{TokensAvailable: 0, CreatedAt: time.Now()}
	if s.HasActiveToken() {
		t.Error("zero balance should not count as an active token")
	}
	s.TokensAvailable = 1
	if !s.HasActiveToken() {
		t.Error("positive balance should count as an active token")
	}
}
