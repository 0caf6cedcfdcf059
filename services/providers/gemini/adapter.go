package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/praxislegal/legal-ai-gateway/models"
	"github.com/praxislegal/legal-ai-gateway/services/providers"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
)

// Adapter implements the Provider interface for the Gemini API
type Adapter struct {
	config     providers.Config
	httpClient *http.Client
	models     []string
}

// NewAdapter creates a new Gemini adapter
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
		models: []string{config.Model, "gemini-2.0-flash-lite"},
	}
}

// ID returns the provider identifier
func (a *Adapter) ID() models.ProviderID {
	return models.ProviderGemini
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

// Process performs one analysis call against generateContent.
func (a *Adapter) Process(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error) {
	startTime := time.Now()

	if a.config.APIKey == "" {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindAuthMissing, "no API key configured", 0, nil)
	}

	payload := generateRequest{
		SystemInstruction: &content{
			Parts: []part{{Text: providers.SystemPrompt(req)}},
		},
		Contents: []content{
			{Role: "user", Parts: []part{{Text: req.Input}}},
		},
	}
	if req.Options.Temperature != nil || req.Options.MaxTokens != nil {
		payload.GenerationConfig = &generationConfig{
			Temperature:     req.Options.Temperature,
			MaxOutputTokens: req.Options.MaxTokens,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindMalformed, "failed to marshal request", 0, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.config.BaseURL, a.config.Model, a.config.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindUpstream, "failed to create request", 0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindMalformed, "failed to unmarshal response", httpResp.StatusCode, err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, providers.NewProviderError(a.ID(), providers.ErrKindMalformed, "empty candidates in response", httpResp.StatusCode, nil)
	}

	candidate := genResp.Candidates[0]
	var sb strings.Builder
	for _, p := range candidate.Content.Parts {
		sb.WriteString(p.Text)
	}

	confidence := 0.85
	if candidate.FinishReason == "MAX_TOKENS" {
		confidence = 0.6
	}

	return &models.AnalysisResponse{
		Output:           sb.String(),
		Provider:         a.ID(),
		Model:            a.config.Model,
		Confidence:       confidence,
		TokensUsed:       genResp.UsageMetadata.TotalTokenCount,
		Cost:             float64(genResp.UsageMetadata.TotalTokenCount) * a.config.CostPerToken,
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

	url := fmt.Sprintf("%s/models?key=%s", a.config.BaseURL, a.config.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
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

// Gemini wire types

type generateRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
