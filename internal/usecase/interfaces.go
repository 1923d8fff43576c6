package usecase

import (
	"context"
	"time"

	"github.com/antscrawling/cpfsim/internal/domain"
)

// LedgerRepository defines data access for runs, ledger rows and entries.
type LedgerRepository interface {
	CreateRun(ctx context.Context, run *domain.Run) error
	// AppendPeriod persists every entry and the row of one period atomically.
	AppendPeriod(ctx context.Context, batch *domain.PeriodBatch) error
	FinishRun(ctx context.Context, run *domain.Run) error
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*domain.Run, error)
	ListRows(ctx context.Context, runID string) ([]*domain.LedgerRow, error)
	ListEntries(ctx context.Context, runID, periodKey string) ([]*domain.Entry, error)
}

// ReferenceGenerator hands out strictly increasing reference numbers.
type ReferenceGenerator interface {
	Next(ctx context.Context) (int64, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// MetricsRecorder receives simulation counters.
type MetricsRecorder interface {
	RecordRun(status domain.RunStatus, duration time.Duration)
	RecordPeriod(entries int)
	RecordMissingKey(key string)
}
