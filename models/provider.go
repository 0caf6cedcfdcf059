package models

// ProviderID identifies one of the configured analysis backends.
// The set is closed: adding a backend means adding a constant here and
// an adapter under services/providers.
type ProviderID string

const (
	// ProviderSelfHostedGeneral is the self-hosted general-purpose model server.
	ProviderSelfHostedGeneral ProviderID = "self_hosted_general"

	// ProviderSelfHostedLegal is the self-hosted legal-domain model server.
	ProviderSelfHostedLegal ProviderID = "self_hosted_legal"

	// ProviderOpenAI is the OpenAI premium API.
	ProviderOpenAI ProviderID = "openai"

	// ProviderAnthropic is the Anthropic premium API.
	ProviderAnthropic ProviderID = "anthropic"

	// ProviderGemini is the Google Gemini premium API.
	ProviderGemini ProviderID = "gemini"
)

// allProviders fixes the stable enumeration order used wherever a
// deterministic traversal of the provider set is required.
var allProviders = []ProviderID{
	ProviderSelfHostedGeneral,
	ProviderSelfHostedLegal,
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderGemini,
}

// AllProviders returns every known provider in stable declaration order.
func AllProviders() []ProviderID {
	out := make([]ProviderID, len(allProviders))
	copy(out, allProviders)
	return out
}

// premiumProviders are the paid cloud APIs, as opposed to self-hosted backends.
var premiumProviders = map[ProviderID]bool{
	ProviderOpenAI:    true,
	ProviderAnthropic: true,
	ProviderGemini:    true,
}

// IsPremium reports whether the provider is a paid cloud API.
func (p ProviderID) IsPremium() bool {
	return premiumProviders[p]
}

// Valid reports whether the value is one of the known providers.
func (p ProviderID) Valid() bool {
	for _, known := range allProviders {
		if p == known {
			return true
		}
	}
	return false
}

func (p ProviderID) String() string {
	return string(p)
}
