package providers

import (
	"context"
	"errors"
	"time"

	"github.com/praxislegal/legal-ai-gateway/models"
)

// Provider represents a unified analysis backend interface
type Provider interface {
	// ID returns the provider identifier (e.g., "openai", "self_hosted_legal")
	ID() models.ProviderID

	// Model returns the model the adapter submits requests to
	Model() string

	// Process executes a single analysis request against the backend.
	// Adapters never retry internally: retry-by-fallback is the
	// gateway's responsibility, and stacking retries would compound
	// backoff policies.
	Process(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error)

	// IsHealthy performs a lightweight liveness probe under its own
	// short timeout. It never returns an error: probe failures
	// degrade to false.
	IsHealthy(ctx context.Context) bool

	// ListModels returns all models the backend advertises
	ListModels() []string
}

// Config holds common configuration for provider adapters
type Config struct {
	// APIKey for authentication; an empty key leaves the provider
	// constructed but never enabled
	APIKey string

	// BaseURL for the API (optional override)
	BaseURL string

	// Model submitted with every request
	Model string

	// Timeout for analysis calls
	Timeout time.Duration

	// HealthTimeout for liveness probes
	HealthTimeout time.Duration

	// CostPerToken in USD, used to price responses whose backend does
	// not report cost itself
	CostPerToken float64
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		Timeout:       30 * time.Second,
		HealthTimeout: 5 * time.Second,
	}
}

// ErrorKind classifies provider failures for the fallback executor
type ErrorKind string

const (
	// ErrKindAuthMissing means the adapter has no usable credential
	ErrKindAuthMissing ErrorKind = "auth_missing"

	// ErrKindRateLimited means the backend rejected the call with a rate limit
	ErrKindRateLimited ErrorKind = "rate_limited"

	// ErrKindTimeout means the call exceeded its deadline
	ErrKindTimeout ErrorKind = "timeout"

	// ErrKindUpstream means the backend returned a server-side failure
	ErrKindUpstream ErrorKind = "upstream"

	// ErrKindMalformed means the backend reply could not be decoded
	ErrKindMalformed ErrorKind = "malformed"
)

// ProviderError represents a failure from one provider attempt. All
// ProviderErrors are recoverable via fallback; fatal conditions
// (validation, no provider enabled) never take this form.
type ProviderError struct {
	// Provider that generated the error
	Provider models.ProviderID

	// Kind classifies the failure
	Kind ErrorKind

	// Message is the error message
	Message string

	// StatusCode is the HTTP status code (if applicable)
	StatusCode int

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return string(e.Provider) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Provider) + ": " + e.Message
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider models.ProviderID, kind ErrorKind, message string, statusCode int, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Kind:       kind,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// AsProviderError extracts a *ProviderError from an error chain
func AsProviderError(err error) (*ProviderError, bool) {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr, true
	}
	return nil, false
}

// KindForStatus maps an HTTP status code from a backend to an ErrorKind
func KindForStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return ErrKindAuthMissing
	case status == 429:
		return ErrKindRateLimited
	case status == 408 || status == 504:
		return ErrKindTimeout
	case status >= 500:
		return ErrKindUpstream
	default:
		return ErrKindUpstream
	}
}
