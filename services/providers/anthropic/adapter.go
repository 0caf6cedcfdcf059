package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/praxislegal/legal-ai-gateway/models"
	"github.com/praxislegal/legal-ai-gateway/services/providers"
)

const (
	defaultBaseURL   = "https://api.anthropic.com/v1"
	defaultModel     = "claude-sonnet-4-20250514"
	anthropicVersion = "2023-06-01"
	defaultMaxTokens = 4096
)

// Adapter implements the Provider interface for the Anthropic API
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
	models     []string
}

// NewAdapter creates a new Anthropic adapter
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
		models: []string{config.Model, "claude-haiku-4-20250514"},
	}
}

// ID returns the provider identifier
func (a *Adapter) ID() models.ProviderID {
	return models.ProviderAnthropic
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

// Process performs one analysis call against the messages API.
func (a *Adapter) Process(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error) {
	startTime := time.Now()

	if a.config.APIKey == "" {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindAuthMissing, "no API key configured", 0, nil)
	}

	maxTokens := defaultMaxTokens
	if req.Options.MaxTokens != nil {
		maxTokens = *req.Options.MaxTokens
	}
	payload := messagesRequest{
		Model:     a.config.Model,
		MaxTokens: maxTokens,
		System:    providers.SystemPrompt(req),
		Messages: []message{
			{Role: "user", Content: req.Input},
		},
	}
	if req.Options.Temperature != nil {
		payload.Temperature = req.Options.Temperature
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindMalformed, "failed to marshal request", 0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindUpstream, "failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.config.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

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

	var msgResp messagesResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindMalformed, "failed to unmarshal response", httpResp.StatusCode, err)
	}
	if len(msgResp.Content) == 0 {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindMalformed, "empty content in response", httpResp.StatusCode, nil)
	}

	var sb strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	totalTokens := msgResp.Usage.InputTokens + msgResp.Usage.OutputTokens

	confidence := 0.92
	if msgResp.StopReason == "max_tokens" {
		confidence = 0.65
	}

	return &models.AnalysisResponse{
		Output:           sb.String(),
		Provider:         a.ID(),
		Model:            msgResp.Model,
		Confidence:       confidence,
		TokensUsed:       totalTokens,
		Cost:             float64(totalTokens) * a.config.CostPerToken,
		Cached:           false,
		ProcessingTimeMs: int(time.Since(startTime).Milliseconds()),
		Kind:             req.Kind,
	}, nil
}

// IsHealthy probes the models listing under its own short timeout.
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
	httpReq.Header.Set("x-api-key", a.config.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
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

// Anthropic wire types

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Content    []contentBlock `json:"content"`
	Usage      usage          `json:"usage"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
