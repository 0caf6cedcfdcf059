package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord captures the final outcome of one top-level analysis
// request. Records are append-only: they are created by the usage
// tracker and never mutated afterwards.
type UsageRecord struct {
	ID               uuid.UUID    `json:"id"`
	RequestID        string       `json:"request_id"`
	UserID           string       `json:"user_id"`
	Provider         ProviderID   `json:"provider"`
	AnalysisKind     AnalysisKind `json:"analysis_kind"`
	TokensUsed       int          `json:"tokens_used"`
	Cost             float64      `json:"cost"`
	Success          bool         `json:"success"`
	ProcessingTimeMs int          `json:"processing_time_ms"`
	Timestamp        time.Time    `json:"timestamp"`
}

// NewUsageRecord creates a usage record with a fresh ID and timestamp.
func NewUsageRecord(requestID, userID string, provider ProviderID, kind AnalysisKind) *UsageRecord {
	return &UsageRecord{
		ID:           uuid.New(),
		RequestID:    requestID,
		UserID:       userID,
		Provider:     provider,
		AnalysisKind: kind,
		Timestamp:    time.Now(),
	}
}

// WithOutcome fills in the measured outcome of the attempt.
func (r *UsageRecord) WithOutcome(tokensUsed int, cost float64, success bool, processingTimeMs int) *UsageRecord {
	r.TokensUsed = tokensUsed
	r.Cost = cost
	r.Success = success
	r.ProcessingTimeMs = processingTimeMs
	return r
}

// ProviderUsage is the per-provider slice of a usage summary.
type ProviderUsage struct {
	Provider ProviderID `json:"provider"`
	Requests int        `json:"requests"`
	Tokens   int        `json:"tokens"`
	Cost     float64    `json:"cost"`
}

// UsageSummary aggregates a user's spend over a reporting window.
type UsageSummary struct {
	UserID        string          `json:"user_id"`
	From          time.Time       `json:"from"`
	TotalRequests int             `json:"total_requests"`
	TotalTokens   int             `json:"total_tokens"`
	TotalCost     float64         `json:"total_cost"`
	SuccessCount  int             `json:"success_count"`
	ByProvider    []ProviderUsage `json:"by_provider"`
}
