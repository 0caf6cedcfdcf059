package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderID(t *testing.T) {
	t.Run("enumeration order is stable", func(t *testing.T) {
		expected := []ProviderID{
			ProviderSelfHostedGeneral,
			ProviderSelfHostedLegal,
			ProviderOpenAI,
			ProviderAnthropic,
			ProviderGemini,
		}
		assert.Equal(t, expected, AllProviders())
	})

	t.Run("AllProviders returns a copy", func(t *testing.T) {
		first := AllProviders()
		first[0] = ProviderGemini
		assert.Equal(t, ProviderSelfHostedGeneral, AllProviders()[0])
	})

	t.Run("premium classification", func(t *testing.T) {
		assert.False(t, ProviderSelfHostedGeneral.IsPremium())
		assert.False(t, ProviderSelfHostedLegal.IsPremium())
		assert.True(t, ProviderOpenAI.IsPremium())
		assert.True(t, ProviderAnthropic.IsPremium())
		assert.True(t, ProviderGemini.IsPremium())
	})

	t.Run("validity", func(t *testing.T) {
		for _, id := range AllProviders() {
			assert.True(t, id.Valid(), string(id))
		}
		assert.False(t, ProviderID("azure").Valid())
		assert.False(t, ProviderID("").Valid())
	})
}

func TestAnalysisKind(t *testing.T) {
	t.Run("every kind is valid", func(t *testing.T) {
		for _, kind := range AllKinds() {
			assert.True(t, kind.Valid(), string(kind))
		}
		assert.False(t, AnalysisKind("mind_reading").Valid())
	})

	t.Run("legal specialized kinds", func(t *testing.T) {
		specialized := []AnalysisKind{
			KindContractAnalysis,
			KindComplianceCheck,
			KindClauseExtraction,
			KindLegalResearch,
			KindPrecedentMatching,
		}
		for _, kind := range specialized {
			assert.True(t, kind.IsLegalSpecialized(), string(kind))
		}
		assert.False(t, KindDocumentSummary.IsLegalSpecialized())
		assert.False(t, KindTranslation.IsLegalSpecialized())
	})

	t.Run("critical kinds", func(t *testing.T) {
		assert.True(t, KindRiskAssessment.IsCritical())
		assert.True(t, KindCasePrediction.IsCritical())
		assert.True(t, KindComplianceCheck.IsCritical())
		assert.False(t, KindContractAnalysis.IsCritical())
		assert.False(t, KindEntityExtraction.IsCritical())
	})

	t.Run("compliance check is both specialized and critical", func(t *testing.T) {
		assert.True(t, KindComplianceCheck.IsLegalSpecialized())
		assert.True(t, KindComplianceCheck.IsCritical())
	})
}

func TestNewUsageRecord(t *testing.T) {
	record := NewUsageRecord("req-1", "user-42", ProviderAnthropic, KindRiskAssessment)

	require.NotNil(t, record)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "req-1", record.RequestID)
	assert.Equal(t, "user-42", record.UserID)
	assert.Equal(t, ProviderAnthropic, record.Provider)
	assert.Equal(t, KindRiskAssessment, record.AnalysisKind)
	assert.WithinDuration(t, time.Now(), record.Timestamp, time.Second)

	record.WithOutcome(1200, 0.018, true, 640)
	assert.Equal(t, 1200, record.TokensUsed)
	assert.InDelta(t, 0.018, record.Cost, 1e-9)
	assert.True(t, record.Success)
	assert.Equal(t, 640, record.ProcessingTimeMs)
}
