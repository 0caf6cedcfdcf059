package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/praxislegal/legal-ai-gateway/services"
	"github.com/praxislegal/legal-ai-gateway/utils"
)

// HandleServiceError maps domain errors to HTTP responses.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)

	switch {
	case services.IsValidationError(err):
		if writeErr := utils.WriteBadRequest(w, err.Error(), details); writeErr != nil {
			logger.Error("failed to write bad request response", zap.Error(writeErr))
		}

	case services.IsNoProviderAvailable(err):
		if writeErr := utils.WriteServiceUnavailable(w, err.Error()); writeErr != nil {
			logger.Error("failed to write service unavailable response", zap.Error(writeErr))
		}

	case services.IsAllProvidersExhausted(err):
		exhausted, _ := services.AsAllProvidersExhausted(err)
		attempted := make([]interface{}, len(exhausted.Attempted))
		for i, p := range exhausted.Attempted {
			attempted[i] = string(p)
		}
		if writeErr := utils.WriteBadGateway(w, err.Error(), map[string]interface{}{
			"attempted": attempted,
		}); writeErr != nil {
			logger.Error("failed to write bad gateway response", zap.Error(writeErr))
		}

	default:
		logger.Error("unhandled service error", zap.Error(err))
		if writeErr := utils.WriteInternalServerError(w, "An unexpected error occurred"); writeErr != nil {
			logger.Error("failed to write internal error response", zap.Error(writeErr))
		}
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{})
		for k, v := range fields {
			details[k] = v
		}
		if writeErr := utils.WriteBadRequest(w, "Validation failed", details); writeErr != nil {
			logger.Error("failed to write validation error response", zap.Error(writeErr))
		}
		return
	}

	if writeErr := utils.WriteBadRequest(w, err.Error(), nil); writeErr != nil {
		logger.Error("failed to write validation error response", zap.Error(writeErr))
	}
}
