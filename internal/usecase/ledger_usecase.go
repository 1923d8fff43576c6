package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/antscrawling/cpfsim/internal/domain"
)

var (
	// ErrInconsistentLedger is returned when stored snapshots do not match the entry trail.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: snapshots do not match entries")
)

// LedgerUseCase answers queries over stored runs.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// GetRun returns one run.
func (uc *LedgerUseCase) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	return uc.ledgerRepo.GetRun(ctx, id)
}

// ListRuns returns runs, newest first.
func (uc *LedgerUseCase) ListRuns(ctx context.Context, limit, offset int) ([]*domain.Run, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.ledgerRepo.ListRuns(ctx, limit, offset)
}

// ListRows returns the ledger rows of a run in period order.
func (uc *LedgerUseCase) ListRows(ctx context.Context, runID string) ([]*domain.LedgerRow, error) {
	if _, err := uc.ledgerRepo.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	return uc.ledgerRepo.ListRows(ctx, runID)
}

// ListEntries returns the entries of a run in reference order, optionally
// restricted to one period key.
func (uc *LedgerUseCase) ListEntries(ctx context.Context, runID, periodKey string) ([]*domain.Entry, error) {
	if periodKey != "" {
		if err := domain.ValidatePeriodKey(periodKey); err != nil {
			return nil, err
		}
	}
	if _, err := uc.ledgerRepo.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	return uc.ledgerRepo.ListEntries(ctx, runID, periodKey)
}

// ConsistencyReport is the outcome of replaying a run's entry trail.
type ConsistencyReport struct {
	RunID         string
	Entries       int
	Rows          int
	Discrepancies []string
}

// Consistent reports whether the replay found no discrepancies.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.Discrepancies) == 0
}

// CheckConsistency replays every entry amount from zero and verifies each
// entry snapshot, then verifies each row against the last regular entry of
// its period.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context, runID string) (*ConsistencyReport, error) {
	entries, err := uc.ListEntries(ctx, runID, "")
	if err != nil {
		return nil, err
	}
	rows, err := uc.ledgerRepo.ListRows(ctx, runID)
	if err != nil {
		return nil, err
	}

	report := &ConsistencyReport{RunID: runID, Entries: len(entries), Rows: len(rows)}

	var running domain.Balances
	closing := make(map[string]domain.Balances)
	for _, e := range entries {
		if err := running.Set(e.Account, running.Get(e.Account).Add(e.Amount)); err != nil {
			return nil, err
		}
		if !running.Equal(e.Balances) {
			report.Discrepancies = append(report.Discrepancies,
				fmt.Sprintf("entry %d: snapshot does not match replayed balances", e.Reference))
		}
		closing[e.PeriodKey] = e.Balances
	}

	for _, row := range rows {
		want, ok := closing[row.PeriodKey]
		if !ok {
			report.Discrepancies = append(report.Discrepancies,
				fmt.Sprintf("row %s: no entries recorded", row.PeriodKey))
			continue
		}
		if !want.Equal(row.Balances) {
			report.Discrepancies = append(report.Discrepancies,
				fmt.Sprintf("row %s: balances do not match the period's last entry", row.PeriodKey))
		}
	}

	if !report.Consistent() {
		return report, ErrInconsistentLedger
	}
	return report, nil
}
