package selfhosted

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/praxislegal/legal-ai-gateway/models"
	"github.com/praxislegal/legal-ai-gateway/services/providers"
)

func newTestServer(t *testing.T, tokens int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"model": "praxis-legal-7b",
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Clause list"}, "finish_reason": "stop"},
			},
			"usage": map[string]any{"total_tokens": tokens},
		})
	}))
}

func TestAdapter_Process_Success(t *testing.T) {
	server := newTestServer(t, 200)
	defer server.Close()

	adapter := NewAdapter(models.ProviderSelfHostedLegal, providers.Config{
		BaseURL:      server.URL,
		Model:        "praxis-legal-7b",
		CostPerToken: 0.000001,
	})

	resp, err := adapter.Process(context.Background(), &models.AnalysisRequest{
		RequestID:   "req-1",
		SubmittedAt: time.Now(),
		Kind:        models.KindClauseExtraction,
		Input:       "Extract the indemnification clauses.",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.ProviderSelfHostedLegal, resp.Provider)
	assert.Equal(t, "Clause list", resp.Output)
	assert.Equal(t, 200, resp.TokensUsed)
	assert.InDelta(t, 0.0002, resp.Cost, 1e-9)
}

func TestAdapter_IdentityFollowsConstructor(t *testing.T) {
	general := NewAdapter(models.ProviderSelfHostedGeneral, providers.Config{BaseURL: "http://general:8080"})
	legal := NewAdapter(models.ProviderSelfHostedLegal, providers.Config{BaseURL: "http://legal:8080"})

	assert.Equal(t, models.ProviderSelfHostedGeneral, general.ID())
	assert.Equal(t, models.ProviderSelfHostedLegal, legal.ID())
}

func TestAdapter_Process_NoBaseURL(t *testing.T) {
	adapter := NewAdapter(models.ProviderSelfHostedGeneral, providers.Config{})

	_, err := adapter.Process(context.Background(), &models.AnalysisRequest{
		Kind:  models.KindDocumentSummary,
		Input: "text",
	})

	provErr, ok := providers.AsProviderError(err)
	assert.True(t, ok)
	assert.Equal(t, providers.ErrKindAuthMissing, provErr.Kind)
}

func TestAdapter_Process_UpstreamError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter := NewAdapter(models.ProviderSelfHostedGeneral, providers.Config{BaseURL: server.URL})

	_, err := adapter.Process(context.Background(), &models.AnalysisRequest{
		Kind:  models.KindDocumentSummary,
		Input: "text",
	})

	provErr, ok := providers.AsProviderError(err)
	assert.True(t, ok)
	assert.Equal(t, providers.ErrKindUpstream, provErr.Kind)
	assert.Equal(t, 1, calls)
}

func TestAdapter_LegalConfidenceBoost(t *testing.T) {
	server := newTestServer(t, 120)
	defer server.Close()

	legal := NewAdapter(models.ProviderSelfHostedLegal, providers.Config{BaseURL: server.URL})
	general := NewAdapter(models.ProviderSelfHostedGeneral, providers.Config{BaseURL: server.URL})

	req := &models.AnalysisRequest{Kind: models.KindClauseExtraction, Input: "text"}

	legalResp, err := legal.Process(context.Background(), req)
	assert.NoError(t, err)
	generalResp, err := general.Process(context.Background(), req)
	assert.NoError(t, err)

	assert.Greater(t, legalResp.Confidence, generalResp.Confidence)
}

func TestAdapter_IsHealthy(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/models", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		adapter := NewAdapter(models.ProviderSelfHostedGeneral, providers.Config{BaseURL: server.URL})
		assert.True(t, adapter.IsHealthy(context.Background()))
	})

	t.Run("unreachable", func(t *testing.T) {
		adapter := NewAdapter(models.ProviderSelfHostedGeneral, providers.Config{
			BaseURL:       "http://127.0.0.1:1",
			HealthTimeout: 100 * time.Millisecond,
		})
		assert.False(t, adapter.IsHealthy(context.Background()))
	})

	t.Run("not configured", func(t *testing.T) {
		adapter := NewAdapter(models.ProviderSelfHostedGeneral, providers.Config{})
		assert.False(t, adapter.IsHealthy(context.Background()))
	})
}
