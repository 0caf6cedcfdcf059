package openai

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

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"
)

// Adapter implements the Provider interface for the OpenAI API
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
	models     []string
}

// NewAdapter creates a new OpenAI adapter
func NewAdapter(config providers.Config) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.HealthTimeout == 0 {
		config.HealthTimeout = 5 * time.Second
	}

	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		models: []string{config.Model, "gpt-4o-mini", "gpt-4-turbo"},
	}
}

// ID returns the provider identifier
func (a *Adapter) ID() models.ProviderID {
	return models.ProviderOpenAI
}

// Model returns the configured model
func (a *Adapter) Model() string {
	return a.config.Model
}

// ListModels returns all models the adapter can submit to
func (a *Adapter) ListModels() []string {
	out := make([]string, len(a.models))
	copy(out, a.models)
	return out
}

// Process performs one analysis call. A single attempt only: retry
// policy belongs to the gateway's fallback executor.
func (a *Adapter) Process(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error) {
	startTime := time.Now()

	if a.config.APIKey == "" {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindAuthMissing, "no API key configured", 0, nil)
	}

	body, err := json.Marshal(a.buildRequest(req))
	if err != nil {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindMalformed, "failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindUpstream, "failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		kind := providers.ErrKindUpstream
		if ctx.Err() != nil || isTimeout(err) {
			kind = providers.ErrKindTimeout
		}
		return nil, providers.NewProviderError(a.ID(), kind, "HTTP request failed", 0, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindMalformed, "failed to read response", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, a.errorFromStatus(httpResp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindMalformed, "failed to unmarshal response", httpResp.StatusCode, err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindMalformed, "empty choices in response", httpResp.StatusCode, nil)
	}

	return a.toAnalysisResponse(&chatResp, req, time.Since(startTime)), nil
}

// IsHealthy probes the models endpoint under its own short timeout.
// A disabled adapter (no key) reports unhealthy without a network call.
func (a *Adapter) IsHealthy(ctx context.Context) bool {
	if a.config.APIKey == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.HealthTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+"/models", nil)
	if err != nil {
		return false
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (a *Adapter) buildRequest(req *models.AnalysisRequest) *chatRequest {
	out := &chatRequest{
		Model: a.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: providers.SystemPrompt(req)},
			{Role: "user", Content: req.Input},
		},
	}
	if req.Options.Temperature != nil {
		out.Temperature = req.Options.Temperature
	}
	if req.Options.MaxTokens != nil {
		out.MaxTokens = req.Options.MaxTokens
	}
	return out
}

func (a *Adapter) toAnalysisResponse(resp *chatResponse, req *models.AnalysisRequest, latency time.Duration) *models.AnalysisResponse {
	choice := resp.Choices[0]

	confidence := 0.88
	if choice.FinishReason == "length" {
		// Truncated output is less trustworthy
		confidence = 0.6
	}

	return &models.AnalysisResponse{
		Output:           choice.Message.Content,
		Provider:         a.ID(),
		Model:            resp.Model,
		Confidence:       confidence,
		TokensUsed:       resp.Usage.TotalTokens,
		Cost:             float64(resp.Usage.TotalTokens) * a.config.CostPerToken,
		Cached:           false,
		ProcessingTimeMs: int(latency.Milliseconds()),
		Kind:             req.Kind,
	}
}

func (a *Adapter) errorFromStatus(statusCode int, body []byte) error {
	var errResp errorResponse
	message := string(body)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}
	return providers.NewProviderError(a.ID(), providers.KindForStatus(statusCode), message, statusCode, nil)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// OpenAI wire types

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
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
