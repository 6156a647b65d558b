package subscription

// Feature identifies a gated area of the platform.
type Feature string

const (
	FeaturePropostas    Feature = "propostas"
	FeatureVideoaulas   Feature = "videoaulas"
	FeatureMateriais    Feature = "materiais"
	FeatureChat         Feature = "chat"
	FeatureEnvioRedacao Feature = "envioRedacao"
)

// Features lists every gated feature.
var Features = []Feature{
	FeaturePropostas,
	FeatureVideoaulas,
	FeatureMateriais,
	FeatureChat,
	FeatureEnvioRedacao,
}

type accessRule int

const (
	accessNever accessRule = iota
	accessAlways
	accessWithToken
)

// planFeatures is the fixed plan table. It is the single source of truth for
// feature gating; every guard in the system must go through HasFeatureAccess.
// The "avulsa with an active token" exception is encoded here as
// accessWithToken, never duplicated elsewhere.
var planFeatures = map[string]map[Feature]accessRule{
	PlanFree: {
		FeaturePropostas: accessAlways,
	},
	PlanAvulsa: {
		FeaturePropostas:    accessAlways,
		FeatureVideoaulas:   accessWithToken,
		FeatureMateriais:    accessWithToken,
		FeatureChat:         accessWithToken,
		FeatureEnvioRedacao: accessWithToken,
	},
	PlanMestre: {
		FeaturePropostas:    accessAlways,
		FeatureVideoaulas:   accessAlways,
		FeatureMateriais:    accessAlways,
		FeatureChat:         accessAlways,
		FeatureEnvioRedacao: accessAlways,
	},
	PlanPrivate: {
		FeaturePropostas:    accessAlways,
		FeatureVideoaulas:   accessAlways,
		FeatureMateriais:    accessAlways,
		FeatureChat:         accessAlways,
		FeatureEnvioRedacao: accessAlways,
	},
	PlanPartner: {
		FeaturePropostas:    accessAlways,
		FeatureVideoaulas:   accessAlways,
		FeatureMateriais:    accessAlways,
		FeatureChat:         accessAlways,
		FeatureEnvioRedacao: accessAlways,
	},
}

// HasFeatureAccess resolves feature access for a plan type. Unknown plans
// resolve to no access. There are no error conditions.
func HasFeatureAccess(planType string, feature Feature, hasActiveToken bool) bool {
	rules, ok := planFeatures[planType]
	if !ok {
		return false
	}
	switch rules[feature] {
	case accessAlways:
		return true
	case accessWithToken:
		return hasActiveToken
	default:
		return false
	}
}

// Entitlements is a snapshot of a subscription's feature access, suitable for
// returning to clients so they never re-derive gating rules themselves.
type Entitlements struct {
	Plan            string           `json:"plan"`
	TokensAvailable int              `json:"tokens_available"`
	Features        map[Feature]bool `json:"features"`
}

// ResolveEntitlements builds the full entitlement snapshot for a subscription.
func ResolveEntitlements(s *Subscription) Entitlements {
	hasToken := s.HasActiveToken()
	features := make(map[Feature]bool, len(Features))
	for _, f := range Features {
		features[f] = HasFeatureAccess(s.Type, f, hasToken)
	}
	return Entitlements{
		Plan:            s.Type,
		TokensAvailable: s.TokensAvailable,
		Features:        features,
	}
}
