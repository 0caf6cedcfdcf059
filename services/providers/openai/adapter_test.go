package openai

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

func newTestRequest() *models.AnalysisRequest {
	return &models.AnalysisRequest{
		RequestID:   "req-1",
		SubmittedAt: time.Now(),
		Kind:        models.KindDocumentSummary,
		Input:       "Summarize the attached engagement letter.",
	}
}

func TestAdapter_Process_Success(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(chatResponse{
			ID:    "chatcmpl-1",
			Model: "gpt-4o",
			Choices: []chatChoice{
				{Message: chatMessage{Role: "assistant", Content: "Summary text"}, FinishReason: "stop"},
			},
			Usage: chatUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
		})
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{
		APIKey:       "sk-test",
		BaseURL:      server.URL,
		Model:        "gpt-4o",
		CostPerToken: 0.00001,
	})

	resp, err := adapter.Process(context.Background(), newTestRequest())

	assert.NoError(t, err)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "Summary text", resp.Output)
	assert.Equal(t, models.ProviderOpenAI, resp.Provider)
	assert.Equal(t, 150, resp.TokensUsed)
	assert.InDelta(t, 0.0015, resp.Cost, 1e-9)
	assert.False(t, resp.Cached)
	assert.Equal(t, models.KindDocumentSummary, resp.Kind)

	// System prompt carries the task instruction, user message carries the input
	assert.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "Summarize the attached engagement letter.", gotBody.Messages[1].Content)
}

func TestAdapter_Process_NoAPIKey(t *testing.T) {
	adapter := NewAdapter(providers.Config{})

	_, err := adapter.Process(context.Background(), newTestRequest())

	provErr, ok := providers.AsProviderError(err)
	assert.True(t, ok)
	assert.Equal(t, providers.ErrKindAuthMissing, provErr.Kind)
}

func TestAdapter_Process_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantKind   providers.ErrorKind
	}{
		{"rate limited", http.StatusTooManyRequests, providers.ErrKindRateLimited},
		{"auth rejected", http.StatusUnauthorized, providers.ErrKindAuthMissing},
		{"server error", http.StatusInternalServerError, providers.ErrKindUpstream},
		{"gateway timeout", http.StatusGatewayTimeout, providers.ErrKindTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.statusCode)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"message": "upstream said no"},
				})
			}))
			defer server.Close()

			adapter := NewAdapter(providers.Config{APIKey: "sk-test", BaseURL: server.URL})

			_, err := adapter.Process(context.Background(), newTestRequest())

			provErr, ok := providers.AsProviderError(err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantKind, provErr.Kind)
			assert.Equal(t, tt.statusCode, provErr.StatusCode)
			assert.Equal(t, "upstream said no", provErr.Message)

			// Failover is owned by the caller; the adapter makes exactly one attempt
			assert.Equal(t, 1, calls)
		})
	}
}

func TestAdapter_Process_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{
		APIKey:  "sk-test",
		BaseURL: server.URL,
		Timeout: 20 * time.Millisecond,
	})

	_, err := adapter.Process(context.Background(), newTestRequest())

	provErr, ok := providers.AsProviderError(err)
	assert.True(t, ok)
	assert.Equal(t, providers.ErrKindTimeout, provErr.Kind)
}

func TestAdapter_Process_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{APIKey: "sk-test", BaseURL: server.URL})

	_, err := adapter.Process(context.Background(), newTestRequest())

	provErr, ok := providers.AsProviderError(err)
	assert.True(t, ok)
	assert.Equal(t, providers.ErrKindMalformed, provErr.Kind)
}

func TestAdapter_Process_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{Model: "gpt-4o"})
	}))
	defer server.Close()

	adapter := NewAdapter(providers.Config{APIKey: "sk-test", BaseURL: server.URL})

	_, err := adapter.Process(context.Background(), newTestRequest())

	provErr, ok := providers.AsProviderError(err)
	assert.True(t, ok)
	assert.Equal(t, providers.ErrKindMalformed, provErr.Kind)
}

func TestAdapter_IsHealthy(t *testing.T) {
	t.Run("healthy endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		adapter := NewAdapter(providers.Config{APIKey: "sk-test", BaseURL: server.URL})
		assert.True(t, adapter.IsHealthy(context.Background()))
	})

	t.Run("failing endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		adapter := NewAdapter(providers.Config{APIKey: "sk-test", BaseURL: server.URL})
		assert.False(t, adapter.IsHealthy(context.Background()))
	})

	t.Run("no API key", func(t *testing.T) {
		adapter := NewAdapter(providers.Config{})
		assert.False(t, adapter.IsHealthy(context.Background()))
	})
}

func TestAdapter_ListModels(t *testing.T) {
	adapter := NewAdapter(providers.Config{APIKey: "sk-test", Model: "gpt-4o"})

	modelList := adapter.ListModels()

	assert.Contains(t, modelList, "gpt-4o")
	assert.NotEmpty(t, modelList)
}
