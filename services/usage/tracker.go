// Package usage meters provider spend. Records are written
// asynchronously so a slow database never sits on the request path;
// budget checks read through to the repository.
package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/praxislegal/legal-ai-gateway/models"
	"github.com/praxislegal/legal-ai-gateway/repositories"
)

// Alert levels for budget consumption.
const (
	AlertNone     = "none"
	AlertWarning  = "warning"
	AlertCritical = "critical"
)

// Consumption fractions at which the alert level escalates.
const (
	warningThreshold  = 0.75
	criticalThreshold = 0.90
)

// BudgetStatus reports a user's month-to-date spend against their
// configured budget.
type BudgetStatus struct {
	UserID     string  `json:"user_id"`
	Budget     float64 `json:"budget"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
	AlertLevel string  `json:"alert_level"`
}

// Config holds configuration for the Tracker
type Config struct {
	BufferSize    int     // Size of the record buffer channel
	WorkerCount   int     // Number of concurrent workers
	MonthlyBudget float64 // Per-user monthly budget in dollars
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:    10000,
		WorkerCount:   5,
		MonthlyBudget: 500,
	}
}

// Tracker records usage asynchronously and answers budget queries.
type Tracker struct {
	usageRepo     repositories.UsageRepository
	logger        *zap.Logger
	recordChan    chan *models.UsageRecord
	workerCount   int
	bufferSize    int
	monthlyBudget float64
	wg            sync.WaitGroup
	started       bool
	stopped       bool
	mu            sync.Mutex
}

// NewTracker creates a new Tracker instance
func NewTracker(usageRepo repositories.UsageRepository, logger *zap.Logger, config Config) *Tracker {
	return &Tracker{
		usageRepo:     usageRepo,
		logger:        logger,
		recordChan:    make(chan *models.UsageRecord, config.BufferSize),
		workerCount:   config.WorkerCount,
		bufferSize:    config.BufferSize,
		monthlyBudget: config.MonthlyBudget,
	}
}

// Start starts the background workers
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return fmt.Errorf("usage tracker already started")
	}

	for i := 0; i < t.workerCount; i++ {
		t.wg.Add(1)
		go t.worker(i)
	}

	t.started = true
	t.logger.Info("started usage tracker",
		zap.Int("worker_count", t.workerCount),
		zap.Int("buffer_size", t.bufferSize))

	return nil
}

// Stop drains pending records and stops the workers. Returns an error
// if the drain does not finish within the timeout.
func (t *Tracker) Stop(timeout time.Duration) error {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return fmt.Errorf("usage tracker not started")
	}
	if t.stopped {
		t.mu.Unlock()
		return fmt.Errorf("usage tracker already stopped")
	}
	// Flag before closing so a concurrent Record drops instead of
	// sending on a closed channel.
	t.stopped = true
	t.mu.Unlock()

	t.logger.Info("stopping usage tracker", zap.Int("pending_records", len(t.recordChan)))

	close(t.recordChan)

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("usage tracker stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("usage tracker stop timeout after %v", timeout)
	}
}

// Record enqueues a usage record without blocking. Metering must never
// fail an analysis request, so a full buffer drops the record with a
// warning instead of returning an error to the caller.
func (t *Tracker) Record(record *models.UsageRecord) {
	// The lock is held across the send so Stop cannot close the channel
	// between the state check and the enqueue. The send never blocks, so
	// the critical section stays short.
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started || t.stopped {
		t.logger.Warn("usage tracker not running, dropping record",
			zap.String("request_id", record.RequestID))
		return
	}

	select {
	case t.recordChan <- record:
	default:
		t.logger.Warn("usage record channel full, dropping record",
			zap.String("request_id", record.RequestID),
			zap.String("user_id", record.UserID),
			zap.Float64("cost", record.Cost))
	}
}

// CheckBudget reports the user's month-to-date spend against the
// configured monthly budget.
func (t *Tracker) CheckBudget(ctx context.Context, userID string) (*BudgetStatus, error) {
	spent, err := t.usageRepo.SpentSince(ctx, userID, monthStart(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to query spend: %w", err)
	}

	status := &BudgetStatus{
		UserID:    userID,
		Budget:    t.monthlyBudget,
		Spent:     spent,
		Remaining: t.monthlyBudget - spent,
	}
	if t.monthlyBudget > 0 {
		status.Percentage = spent / t.monthlyBudget
	}
	status.AlertLevel = alertLevel(status.Percentage)

	return status, nil
}

// Summary aggregates the user's month-to-date usage per provider.
func (t *Tracker) Summary(ctx context.Context, userID string) (*models.UsageSummary, error) {
	summary, err := t.usageRepo.Summary(ctx, userID, monthStart(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to query usage summary: %w", err)
	}
	return summary, nil
}

// Pending returns the number of records waiting to be written.
func (t *Tracker) Pending() int {
	return len(t.recordChan)
}

func (t *Tracker) worker(id int) {
	defer t.wg.Done()

	for record := range t.recordChan {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := t.usageRepo.Insert(ctx, record)
		cancel()

		if err != nil {
			t.logger.Error("failed to insert usage record",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("request_id", record.RequestID),
				zap.String("user_id", record.UserID))
		}
	}
}

// alertLevel maps a consumption fraction to an alert level. The
// boundaries are inclusive: hitting 75% exactly already warns.
func alertLevel(percentage float64) string {
	switch {
	case percentage >= criticalThreshold:
		return AlertCritical
	case percentage >= warningThreshold:
		return AlertWarning
	default:
		return AlertNone
	}
}

// monthStart truncates an instant to the first moment of its month in
// UTC, the billing period boundary.
func monthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
