package models

import "time"

// AnalysisKind identifies the type of analysis a caller is requesting.
type AnalysisKind string

const (
	KindContractAnalysis   AnalysisKind = "contract_analysis"
	KindComplianceCheck    AnalysisKind = "compliance_check"
	KindClauseExtraction   AnalysisKind = "clause_extraction"
	KindLegalResearch      AnalysisKind = "legal_research"
	KindPrecedentMatching  AnalysisKind = "precedent_matching"
	KindRiskAssessment     AnalysisKind = "risk_assessment"
	KindCasePrediction     AnalysisKind = "case_prediction"
	KindDocumentGeneration AnalysisKind = "document_generation"
	KindDocumentSummary    AnalysisKind = "document_summary"
	KindEntityExtraction   AnalysisKind = "entity_extraction"
	KindSentimentAnalysis  AnalysisKind = "sentiment_analysis"
	KindTranslation        AnalysisKind = "translation"
)

// AllKinds returns every analysis kind in stable declaration order.
func AllKinds() []AnalysisKind {
	return []AnalysisKind{
		KindContractAnalysis,
		KindComplianceCheck,
		KindClauseExtraction,
		KindLegalResearch,
		KindPrecedentMatching,
		KindRiskAssessment,
		KindCasePrediction,
		KindDocumentGeneration,
		KindDocumentSummary,
		KindEntityExtraction,
		KindSentimentAnalysis,
		KindTranslation,
	}
}

// legalSpecializedKinds benefit from the legal-domain self-hosted model.
var legalSpecializedKinds = map[AnalysisKind]bool{
	KindContractAnalysis:  true,
	KindComplianceCheck:   true,
	KindClauseExtraction:  true,
	KindLegalResearch:     true,
	KindPrecedentMatching: true,
}

// criticalKinds are routed to premium providers when available because
// the cost of a wrong answer dominates the cost of the call.
var criticalKinds = map[AnalysisKind]bool{
	KindRiskAssessment:  true,
	KindCasePrediction:  true,
	KindComplianceCheck: true,
}

// IsLegalSpecialized reports whether the kind is one of the
// legal-specialized analysis types.
func (k AnalysisKind) IsLegalSpecialized() bool {
	return legalSpecializedKinds[k]
}

// IsCritical reports whether the kind is one of the critical analysis types.
func (k AnalysisKind) IsCritical() bool {
	return criticalKinds[k]
}

// Valid reports whether the value is one of the known kinds.
func (k AnalysisKind) Valid() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// RequestContext carries the legal context an analysis runs in.
// All fields participate in the cache fingerprint.
type RequestContext struct {
	Jurisdiction         string `json:"jurisdiction,omitempty"`
	Language             string `json:"language,omitempty"`
	PracticeArea         string `json:"practice_area,omitempty"`
	ConfidentialityLevel string `json:"confidentiality_level,omitempty"`
}

// AnalysisOptions are optional generation parameters.
type AnalysisOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// AnalysisRequest is the gateway's unit of work. It is immutable once
// constructed. RequestID and SubmittedAt identify this particular
// submission and are excluded from the cache fingerprint.
type AnalysisRequest struct {
	RequestID   string          `json:"request_id"`
	SubmittedAt time.Time       `json:"submitted_at"`
	Kind        AnalysisKind    `json:"kind"`
	Input       string          `json:"input"`
	Context     RequestContext  `json:"context"`
	Options     AnalysisOptions `json:"options"`
}

// AnalysisResponse is the uniform result shape every provider adapter
// normalizes into.
type AnalysisResponse struct {
	Output           string       `json:"output"`
	Provider         ProviderID   `json:"provider"`
	Model            string       `json:"model"`
	Confidence       float64      `json:"confidence"`
	TokensUsed       int          `json:"tokens_used"`
	Cost             float64      `json:"cost"`
	Cached           bool         `json:"cached"`
	ProcessingTimeMs int          `json:"processing_time_ms"`
	Kind             AnalysisKind `json:"kind"`
}
