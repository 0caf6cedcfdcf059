package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/praxislegal/legal-ai-gateway/models"
	"github.com/praxislegal/legal-ai-gateway/repositories"
)

// UsageRepository implements the repositories.UsageRepository interface
type UsageRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *DB, logger *zap.Logger) repositories.UsageRepository {
	return &UsageRepository{
		db:     db,
		logger: logger,
	}
}

// Insert stores one usage record. Records are append-only.
func (r *UsageRepository) Insert(ctx context.Context, record *models.UsageRecord) error {
	query := `
		INSERT INTO usage_records (
			id, request_id, user_id, provider, analysis_kind,
			tokens_used, cost, success, processing_time_ms, timestamp
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.db.ExecContext(ctx, query,
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
	)

	if err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}

	r.logger.Debug("usage record inserted",
		zap.String("id", record.ID.String()),
		zap.String("request_id", record.RequestID))
	return nil
}

// SpentSince sums a user's cost from the given instant onward.
func (r *UsageRepository) SpentSince(ctx context.Context, userID string, since time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(cost), 0)
		FROM usage_records
		WHERE user_id = $1 AND timestamp >= $2
	`

	var spent float64
	if err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&spent); err != nil {
		return 0, fmt.Errorf("failed to sum spend: %w", err)
	}

	return spent, nil
}

// Summary aggregates a user's usage per provider from the given instant
// onward.
func (r *UsageRepository) Summary(ctx context.Context, userID string, since time.Time) (*models.UsageSummary, error) {
	query := `
		SELECT provider,
		       COUNT(*),
		       COALESCE(SUM(tokens_used), 0),
		       COALESCE(SUM(cost), 0),
		       COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0)
		FROM usage_records
		WHERE user_id = $1 AND timestamp >= $2
		GROUP BY provider
		ORDER BY provider
	`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage summary: %w", err)
	}
	defer rows.Close()

	summary := &models.UsageSummary{
		UserID: userID,
		From:   since,
	}

	for rows.Next() {
		var pu models.ProviderUsage
		var successCount int
		if err := rows.Scan(&pu.Provider, &pu.Requests, &pu.Tokens, &pu.Cost, &successCount); err != nil {
			return nil, fmt.Errorf("failed to scan usage summary row: %w", err)
		}
		summary.ByProvider = append(summary.ByProvider, pu)
		summary.TotalRequests += pu.Requests
		summary.TotalTokens += pu.Tokens
		summary.TotalCost += pu.Cost
		summary.SuccessCount += successCount
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate usage summary rows: %w", err)
	}

	return summary, nil
}
