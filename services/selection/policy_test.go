package selection

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxislegal/legal-ai-gateway/models"
	"github.com/praxislegal/legal-ai-gateway/services"
)

func allEnabled() map[models.ProviderID]bool {
	enabled := make(map[models.ProviderID]bool)
	for _, id := range models.AllProviders() {
		enabled[id] = true
	}
	return enabled
}

func defaultPriorities() map[models.ProviderID]int {
	return map[models.ProviderID]int{
		models.ProviderAnthropic: 30,
		models.ProviderOpenAI:    20,
		models.ProviderGemini:    10,
	}
}

func TestSelect_LegalSpecializedPrefersLegalModel(t *testing.T) {
	for _, kind := range []models.AnalysisKind{
		models.KindContractAnalysis,
		models.KindComplianceCheck,
		models.KindClauseExtraction,
		models.KindPrecedentMatching,
	} {
		t.Run(string(kind), func(t *testing.T) {
			got, err := Select(kind, allEnabled(), defaultPriorities())
			assert.NoError(t, err)
			assert.Equal(t, models.ProviderSelfHostedLegal, got)
		})
	}
}

func TestSelect_LegalSpecializedFallsThroughWhenDisabled(t *testing.T) {
	enabled := allEnabled()
	enabled[models.ProviderSelfHostedLegal] = false

	got, err := Select(models.KindClauseExtraction, enabled, defaultPriorities())

	assert.NoError(t, err)
	assert.Equal(t, models.ProviderSelfHostedGeneral, got)
}

func TestSelect_CriticalGoesToHighestPriorityPremium(t *testing.T) {
	got, err := Select(models.KindRiskAssessment, allEnabled(), defaultPriorities())

	assert.NoError(t, err)
	assert.Equal(t, models.ProviderAnthropic, got)
}

func TestSelect_CriticalRespectsPriorityOrder(t *testing.T) {
	priorities := map[models.ProviderID]int{
		models.ProviderOpenAI:    50,
		models.ProviderAnthropic: 30,
		models.ProviderGemini:    10,
	}

	got, err := Select(models.KindCasePrediction, allEnabled(), priorities)

	assert.NoError(t, err)
	assert.Equal(t, models.ProviderOpenAI, got)
}

func TestSelect_CriticalTieBreaksOnStableOrder(t *testing.T) {
	priorities := map[models.ProviderID]int{
		models.ProviderOpenAI:    10,
		models.ProviderAnthropic: 10,
		models.ProviderGemini:    10,
	}

	first, err := Select(models.KindRiskAssessment, allEnabled(), priorities)
	assert.NoError(t, err)

	for i := 0; i < 50; i++ {
		got, err := Select(models.KindRiskAssessment, allEnabled(), priorities)
		assert.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestSelect_CriticalWithoutPremiumUsesGeneral(t *testing.T) {
	enabled := map[models.ProviderID]bool{
		models.ProviderSelfHostedGeneral: true,
	}

	got, err := Select(models.KindRiskAssessment, enabled, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.ProviderSelfHostedGeneral, got)
}

func TestSelect_LegalResearchPrefersResearchProvider(t *testing.T) {
	got, err := Select(models.KindLegalResearch, allEnabled(), defaultPriorities())

	assert.NoError(t, err)
	assert.Equal(t, models.ProviderAnthropic, got)
}

func TestSelect_LegalResearchFallsBackWhenResearchProviderDisabled(t *testing.T) {
	enabled := allEnabled()
	enabled[models.ProviderAnthropic] = false

	got, err := Select(models.KindLegalResearch, enabled, defaultPriorities())

	assert.NoError(t, err)
	assert.Equal(t, models.ProviderSelfHostedGeneral, got)
}

func TestSelect_DefaultPrefersGeneralModel(t *testing.T) {
	got, err := Select(models.KindDocumentSummary, allEnabled(), defaultPriorities())

	assert.NoError(t, err)
	assert.Equal(t, models.ProviderSelfHostedGeneral, got)
}

func TestSelect_LastResortUsesStableOrder(t *testing.T) {
	enabled := map[models.ProviderID]bool{
		models.ProviderGemini: true,
	}

	got, err := Select(models.KindDocumentSummary, enabled, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.ProviderGemini, got)
}

func TestSelect_NothingEnabled(t *testing.T) {
	_, err := Select(models.KindDocumentSummary, map[models.ProviderID]bool{}, nil)

	assert.Error(t, err)
	assert.True(t, services.IsNoProviderAvailable(err))
}

func TestSelect_Deterministic(t *testing.T) {
	enabled := allEnabled()
	priorities := defaultPriorities()

	for _, kind := range models.AllKinds() {
		first, err := Select(kind, enabled, priorities)
		assert.NoError(t, err)
		for i := 0; i < 20; i++ {
			got, err := Select(kind, enabled, priorities)
			assert.NoError(t, err)
			assert.Equal(t, first, got, "kind %s selected inconsistently", kind)
		}
	}
}

func TestSelect_DeterministicAcrossRandomSubsets(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	priorities := defaultPriorities()

	for trial := 0; trial < 200; trial++ {
		enabled := make(map[models.ProviderID]bool)
		anyEnabled := false
		for _, id := range models.AllProviders() {
			on := rng.Intn(2) == 1
			enabled[id] = on
			anyEnabled = anyEnabled || on
		}

		for _, kind := range models.AllKinds() {
			first, err := Select(kind, enabled, priorities)
			if !anyEnabled {
				assert.True(t, services.IsNoProviderAvailable(err))
				continue
			}

			require.NoError(t, err, "trial %d kind %s enabled %v", trial, kind, enabled)
			assert.True(t, enabled[first],
				"trial %d kind %s selected disabled provider %s", trial, kind, first)

			for i := 0; i < 5; i++ {
				got, err := Select(kind, enabled, priorities)
				require.NoError(t, err)
				assert.Equal(t, first, got,
					"trial %d kind %s selected inconsistently", trial, kind)
			}
		}
	}
}
