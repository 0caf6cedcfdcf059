package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/praxislegal/legal-ai-gateway/middleware"
	"github.com/praxislegal/legal-ai-gateway/models"
	"github.com/praxislegal/legal-ai-gateway/services/usage"
)

// MockUsageService is a mock implementation of UsageService
type MockUsageService struct {
	mock.Mock
}

func (m *MockUsageService) CheckBudget(ctx context.Context, userID string) (*usage.BudgetStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usage.BudgetStatus), args.Error(1)
}

func (m *MockUsageService) Summary(ctx context.Context, userID string) (*models.UsageSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UsageSummary), args.Error(1)
}

func newUsageRequest(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return req.WithContext(middleware.WithUserID(req.Context(), "user-42"))
}

func TestHandleBudget(t *testing.T) {
	logger := zap.NewNop()

	t.Run("returns budget status", func(t *testing.T) {
		mockService := new(MockUsageService)
		handler := NewUsageHandler(mockService, logger)

		mockService.On("CheckBudget", mock.Anything, "user-42").Return(&usage.BudgetStatus{
			UserID:     "user-42",
			Budget:     500,
			Spent:      400,
			Remaining:  100,
			Percentage: 0.8,
			AlertLevel: usage.AlertWarning,
		}, nil)

		w := httptest.NewRecorder()
		handler.HandleBudget(w, newUsageRequest("/api/v1/usage/budget"))

		assert.Equal(t, http.StatusOK, w.Code)

		var status usage.BudgetStatus
		require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
		assert.Equal(t, usage.AlertWarning, status.AlertLevel)
		assert.InDelta(t, 100.0, status.Remaining, 0.001)

		mockService.AssertExpectations(t)
	})

	t.Run("repository failure", func(t *testing.T) {
		mockService := new(MockUsageService)
		handler := NewUsageHandler(mockService, logger)

		mockService.On("CheckBudget", mock.Anything, "user-42").Return(nil, assert.AnError)

		w := httptest.NewRecorder()
		handler.HandleBudget(w, newUsageRequest("/api/v1/usage/budget"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandleSummary(t *testing.T) {
	logger := zap.NewNop()

	t.Run("returns per-provider breakdown", func(t *testing.T) {
		mockService := new(MockUsageService)
		handler := NewUsageHandler(mockService, logger)

		mockService.On("Summary", mock.Anything, "user-42").Return(&models.UsageSummary{
			UserID:        "user-42",
			From:          time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			TotalRequests: 12,
			TotalTokens:   8400,
			TotalCost:     0.42,
			SuccessCount:  11,
			ByProvider: []models.ProviderUsage{
				{Provider: models.ProviderAnthropic, Requests: 5, Tokens: 5000, Cost: 0.3},
				{Provider: models.ProviderSelfHostedLegal, Requests: 7, Tokens: 3400, Cost: 0.12},
			},
		}, nil)

		w := httptest.NewRecorder()
		handler.HandleSummary(w, newUsageRequest("/api/v1/usage/summary"))

		assert.Equal(t, http.StatusOK, w.Code)

		var summary models.UsageSummary
		require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
		assert.Equal(t, 12, summary.TotalRequests)
		assert.Len(t, summary.ByProvider, 2)

		mockService.AssertExpectations(t)
	})

	t.Run("repository failure", func(t *testing.T) {
		mockService := new(MockUsageService)
		handler := NewUsageHandler(mockService, logger)

		mockService.On("Summary", mock.Anything, "user-42").Return(nil, assert.AnError)

		w := httptest.NewRecorder()
		handler.HandleSummary(w, newUsageRequest("/api/v1/usage/summary"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
