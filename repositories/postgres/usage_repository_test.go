package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/praxislegal/legal-ai-gateway/models"
)

func newMockRepo(t *testing.T) (*UsageRepository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &DB{DB: mockDB, logger: zap.NewNop()}
	return NewUsageRepository(db, zap.NewNop()).(*UsageRepository), mock
}

func TestUsageRepository_Insert(t *testing.T) {
	repo, mock := newMockRepo(t)

	record := models.NewUsageRecord("req-1", "user-1", models.ProviderOpenAI, models.KindDocumentSummary).
		WithOutcome(150, 0.0015, true, 420)

	mock.ExpectExec("INSERT INTO usage_records").
		WithArgs(
			record.ID,
			record.RequestID,
			record.UserID,
			record.Provider,
			record.AnalysisKind,
			record.TokensUsed,
			record.Cost,
			record.Success,
			record.ProcessingTimeMs,
			record.Timestamp,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), record)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageRepository_Insert_Error(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO usage_records").
		WillReturnError(errors.New("connection reset"))

	record := models.NewUsageRecord("req-1", "user-1", models.ProviderOpenAI, models.KindDocumentSummary)
	err := repo.Insert(context.Background(), record)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert usage record")
}

func TestUsageRepository_SpentSince(t *testing.T) {
	repo, mock := newMockRepo(t)
	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(cost\\), 0\\)").
		WithArgs("user-1", since).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(123.45))

	spent, err := repo.SpentSince(context.Background(), "user-1", since)

	assert.NoError(t, err)
	assert.Equal(t, 123.45, spent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageRepository_SpentSince_NoRecords(t *testing.T) {
	repo, mock := newMockRepo(t)
	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(cost\\), 0\\)").
		WithArgs("user-1", since).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))

	spent, err := repo.SpentSince(context.Background(), "user-1", since)

	assert.NoError(t, err)
	assert.Zero(t, spent)
}

func TestUsageRepository_Summary(t *testing.T) {
	repo, mock := newMockRepo(t)
	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"provider", "count", "tokens", "cost", "successes"}).
		AddRow("anthropic", 10, 5000, 0.1, 9).
		AddRow("self_hosted_general", 40, 8000, 0.008, 40)

	mock.ExpectQuery("SELECT provider").
		WithArgs("user-1", since).
		WillReturnRows(rows)

	summary, err := repo.Summary(context.Background(), "user-1", since)

	require.NoError(t, err)
	assert.Equal(t, "user-1", summary.UserID)
	assert.Equal(t, 50, summary.TotalRequests)
	assert.Equal(t, 13000, summary.TotalTokens)
	assert.InDelta(t, 0.108, summary.TotalCost, 1e-9)
	assert.Equal(t, 49, summary.SuccessCount)
	require.Len(t, summary.ByProvider, 2)
	assert.Equal(t, models.ProviderAnthropic, summary.ByProvider[0].Provider)
	assert.Equal(t, 10, summary.ByProvider[0].Requests)
}

func TestUsageRepository_Summary_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)
	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT provider").
		WithArgs("user-1", since).
		WillReturnRows(sqlmock.NewRows([]string{"provider", "count", "tokens", "cost", "successes"}))

	summary, err := repo.Summary(context.Background(), "user-1", since)

	require.NoError(t, err)
	assert.Zero(t, summary.TotalRequests)
	assert.Empty(t, summary.ByProvider)
}
