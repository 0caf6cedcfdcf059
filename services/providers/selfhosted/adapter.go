package selfhosted

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/praxislegal/legal-ai-gateway/models"
	"github.com/praxislegal/legal-ai-gateway/services/providers"
)

// Adapter implements the Provider interface for self-hosted inference
// servers exposing an OpenAI-compatible chat completions API. The same
// adapter backs both the general and the legal-tuned deployments; the
// constructor fixes which identity each instance reports.
type Adapter struct {
	id         models.ProviderID
	config     providers.Config
	httpClient *http.Client
}

// NewAdapter creates an adapter bound to one self-hosted deployment.
func NewAdapter(id models.ProviderID, config providers.Config) *Adapter {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.HealthTimeout == 0 {
		config.HealthTimeout = 5 * time.Second
	}

	return &Adapter{
		id:     id,
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// ID returns the provider identifier
func (a *Adapter) ID() models.ProviderID {
	return a.id
}

// Model returns the configured model
func (a *Adapter) Model() string {
	return a.config.Model
}

// ListModels returns all models the adapter can submit to
func (a *Adapter) ListModels() []string {
	return []string{a.config.Model}
}

// Process performs one analysis call against the local server.
func (a *Adapter) Process(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error) {
	startTime := time.Now()

	if a.config.BaseURL == "" {
		return nil, providers.NewProviderError(a.id, providers.ErrKindAuthMissing, "no base URL configured", 0, nil)
	}

	payload := chatRequest{
		Model: a.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: providers.SystemPrompt(req)},
			{Role: "user", Content: req.Input},
		},
	}
	if req.Options.Temperature != nil {
		payload.Temperature = req.Options.Temperature
	}
	if req.Options.MaxTokens != nil {
		payload.MaxTokens = req.Options.MaxTokens
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, providers.NewProviderError(a.id, providers.ErrKindMalformed, "failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(a.id, providers.ErrKindUpstream, "failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		kind := providers.ErrKindUpstream
		if ctx.Err() != nil || isTimeout(err) {
			kind = providers.ErrKindTimeout
		}
		return nil, providers.NewProviderError(a.id, kind, "HTTP request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(a.id, providers.ErrKindMalformed, "failed to read response", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, providers.NewProviderError(a.id, providers.KindForStatus(httpResp.StatusCode), string(respBody), httpResp.StatusCode, nil)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, providers.NewProviderError(a.id, providers.ErrKindMalformed, "failed to unmarshal response", httpResp.StatusCode, err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, providers.NewProviderError(a.id, providers.ErrKindMalformed, "empty choices in response", httpResp.StatusCode, nil)
	}

	confidence := 0.8
	if a.id == models.ProviderSelfHostedLegal && req.Kind.IsLegalSpecialized() {
		// The legal-tuned deployment is the strongest option for its
		// own specializations.
		confidence = 0.9
	}

	return &models.AnalysisResponse{
		Output:           chatResp.Choices[0].Message.Content,
		Provider:         a.id,
		Model:            chatResp.Model,
		Confidence:       confidence,
		TokensUsed:       chatResp.Usage.TotalTokens,
		Cost:             float64(chatResp.Usage.TotalTokens) * a.config.CostPerToken,
		Cached:           false,
		ProcessingTimeMs: int(time.Since(startTime).Milliseconds()),
		Kind:             req.Kind,
	}, nil
}

// IsHealthy probes the models endpoint under its own short timeout.
func (a *Adapter) IsHealthy(ctx context.Context) bool {
	if a.config.BaseURL == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.HealthTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+"/v1/models", nil)
	if err != nil {
		return false
	}

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
