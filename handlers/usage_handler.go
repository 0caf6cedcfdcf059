package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/praxislegal/legal-ai-gateway/middleware"
	"github.com/praxislegal/legal-ai-gateway/models"
	"github.com/praxislegal/legal-ai-gateway/services/usage"
	"github.com/praxislegal/legal-ai-gateway/utils"
)

// UsageService defines the tracker operations the handler depends on
type UsageService interface {
	CheckBudget(ctx context.Context, userID string) (*usage.BudgetStatus, error)
	Summary(ctx context.Context, userID string) (*models.UsageSummary, error)
}

// UsageHandler handles usage and budget HTTP requests
type UsageHandler struct {
	service UsageService
	logger  *zap.Logger
}

// NewUsageHandler creates a new UsageHandler
func NewUsageHandler(service UsageService, logger *zap.Logger) *UsageHandler {
	return &UsageHandler{
		service: service,
		logger:  logger,
	}
}

// HandleBudget handles GET /api/v1/usage/budget
func (h *UsageHandler) HandleBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserIDFromContext(ctx)

	status, err := h.service.CheckBudget(ctx, userID)
	if err != nil {
		h.logger.Error("budget check failed",
			zap.String("user_id", userID),
			zap.Error(err))
		utils.WriteInternalServerError(w, "failed to check budget")
		return
	}

	utils.WriteJSON(w, http.StatusOK, status)
}

// HandleSummary handles GET /api/v1/usage/summary
func (h *UsageHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserIDFromContext(ctx)

	summary, err := h.service.Summary(ctx, userID)
	if err != nil {
		h.logger.Error("usage summary failed",
			zap.String("user_id", userID),
			zap.Error(err))
		utils.WriteInternalServerError(w, "failed to load usage summary")
		return
	}

	utils.WriteJSON(w, http.StatusOK, summary)
}
