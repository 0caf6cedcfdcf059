package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/praxislegal/legal-ai-gateway/middleware"
	"github.com/praxislegal/legal-ai-gateway/models"
	"github.com/praxislegal/legal-ai-gateway/utils"
)

// AnalyzeRequest is the wire shape of POST /api/v1/analyze
type AnalyzeRequest struct {
	Kind    string                `json:"kind" validate:"required"`
	Input   string                `json:"input" validate:"required"`
	Context AnalyzeRequestContext `json:"context"`
	Options AnalyzeOptions        `json:"options"`
}

// AnalyzeRequestContext carries matter metadata used for routing and
// prompting.
type AnalyzeRequestContext struct {
	Jurisdiction         string `json:"jurisdiction,omitempty"`
	Language             string `json:"language,omitempty"`
	PracticeArea         string `json:"practiceArea,omitempty"`
	ConfidentialityLevel string `json:"confidentialityLevel,omitempty"`
}

// AnalyzeOptions carries optional generation parameters.
type AnalyzeOptions struct {
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   *int     `json:"maxTokens,omitempty" validate:"omitempty,gt=0"`
}

// AnalysisService defines the gateway operation the handler depends on
type AnalysisService interface {
	Process(ctx context.Context, req *models.AnalysisRequest, userID string) (*models.AnalysisResponse, error)
}

// AnalyzeHandler handles analysis HTTP requests
type AnalyzeHandler struct {
	service AnalysisService
	logger  *zap.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler
func NewAnalyzeHandler(service AnalysisService, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		service: service,
		logger:  logger,
	}
}

// HandleAnalyze handles POST /api/v1/analyze
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)
	userID := middleware.GetUserIDFromContext(ctx)

	var body AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteBadRequest(w, "invalid JSON body", nil)
		return
	}

	if err := utils.ValidateStruct(body); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	req := &models.AnalysisRequest{
		RequestID:   requestID,
		SubmittedAt: time.Now(),
		Kind:        models.AnalysisKind(body.Kind),
		Input:       body.Input,
		Context: models.RequestContext{
			Jurisdiction:         body.Context.Jurisdiction,
			Language:             body.Context.Language,
			PracticeArea:         body.Context.PracticeArea,
			ConfidentialityLevel: body.Context.ConfidentialityLevel,
		},
		Options: models.AnalysisOptions{
			Temperature: body.Options.Temperature,
			MaxTokens:   body.Options.MaxTokens,
		},
	}

	resp, err := h.service.Process(ctx, req, userID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("analysis request completed",
		zap.String("request_id", requestID),
		zap.String("user_id", userID),
		zap.String("kind", body.Kind),
		zap.String("provider", string(resp.Provider)),
		zap.Bool("cached", resp.Cached))

	utils.WriteJSON(w, http.StatusOK, resp)
}
