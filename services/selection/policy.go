// Package selection decides which provider should handle an analysis
// request. The policy is a pure function over the request kind and the
// current enablement snapshot, so the same inputs always pick the same
// provider.
package selection

import (
	"github.com/praxislegal/legal-ai-gateway/models"
	"github.com/praxislegal/legal-ai-gateway/services"
)

// Select picks the provider for a given analysis kind. Rules apply in
// order; the first match wins:
//
//  1. Legal-specialized kinds go to the legal-tuned self-hosted model.
//  2. Critical kinds go to the highest-priority enabled premium provider.
//  3. Legal research goes to the research premium provider.
//  4. Anything else prefers the general self-hosted model.
//  5. Failing that, the first enabled provider in stable order.
//
// When no provider is enabled at all, a fatal no-provider error is
// returned.
func Select(kind models.AnalysisKind, enabled map[models.ProviderID]bool, priorities map[models.ProviderID]int) (models.ProviderID, error) {
	if kind.IsLegalSpecialized() && enabled[models.ProviderSelfHostedLegal] {
		return models.ProviderSelfHostedLegal, nil
	}

	if kind.IsCritical() {
		if id, ok := bestPremium(enabled, priorities); ok {
			return id, nil
		}
	}

	if kind == models.KindLegalResearch && enabled[models.ProviderAnthropic] {
		return models.ProviderAnthropic, nil
	}

	if enabled[models.ProviderSelfHostedGeneral] {
		return models.ProviderSelfHostedGeneral, nil
	}

	for _, id := range models.AllProviders() {
		if enabled[id] {
			return id, nil
		}
	}

	return "", services.ErrNoProviderAvailable
}

// bestPremium returns the enabled premium provider with the highest
// configured priority. Ties break on stable provider order, which keeps
// the policy deterministic even with equal priorities.
func bestPremium(enabled map[models.ProviderID]bool, priorities map[models.ProviderID]int) (models.ProviderID, bool) {
	var best models.ProviderID
	bestPriority := -1
	found := false

	for _, id := range models.AllProviders() {
		if !id.IsPremium() || !enabled[id] {
			continue
		}
		if !found || priorities[id] > bestPriority {
			best = id
			bestPriority = priorities[id]
			found = true
		}
	}

	return best, found
}
