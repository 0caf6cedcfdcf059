package repositories

import (
	"context"
	"time"

	"github.com/praxislegal/legal-ai-gateway/models"
)

// UsageRepository persists billing records and answers spend queries.
type UsageRepository interface {
	// Insert stores one usage record. Called once per top-level
	// analysis request.
	Insert(ctx context.Context, record *models.UsageRecord) error

	// SpentSince sums the cost a user has accrued from the given
	// instant onward.
	SpentSince(ctx context.Context, userID string, since time.Time) (float64, error)

	// Summary aggregates a user's usage per provider from the given
	// instant onward.
	Summary(ctx context.Context, userID string, since time.Time) (*models.UsageSummary, error)
}
