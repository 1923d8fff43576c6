package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/antscrawling/cpfsim/internal/domain"
	"github.com/antscrawling/cpfsim/internal/infrastructure/postgres/generated"
)

type dbPool interface {
	pgxPool
	generated.DBTX
}

// LedgerRepository implements usecase.LedgerRepository on PostgreSQL.
type LedgerRepository struct {
	queries *generated.Queries
	txm     *TxManager
	retrier *Retrier
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool, logger zerolog.Logger) *LedgerRepository {
	return newLedgerRepositoryWithPool(pool, logger)
}

func newLedgerRepositoryWithPool(pool dbPool, logger zerolog.Logger) *LedgerRepository {
	return &LedgerRepository{
		queries: generated.New(pool),
		txm:     newTxManagerWithPool(pool),
		retrier: NewRetrier(logger),
	}
}

// CreateRun inserts a run record.
func (r *LedgerRepository) CreateRun(ctx context.Context, run *domain.Run) error {
	return r.retrier.Retry(ctx, func() error {
		return r.queries.CreateRun(ctx, generated.CreateRunParams{
			ID:        run.ID,
			Status:    string(run.Status),
			StartDate: timeToPgDate(run.StartDate),
			EndDate:   timeToPgDate(run.EndDate),
			BirthDate: timeToPgDate(run.BirthDate),
			CreatedAt: timeToPgTimestamptz(run.CreatedAt),
		})
	})
}

// AppendPeriod writes all entries and the row of one period in one transaction.
func (r *LedgerRepository) AppendPeriod(ctx context.Context, batch *domain.PeriodBatch) error {
	err := r.txm.InTx(ctx, func(tx pgx.Tx) error {
		q := r.queries.WithTx(tx)

		for _, e := range batch.Entries {
			if err := q.InsertEntry(ctx, entryToParams(e)); err != nil {
				return fmt.Errorf("entry %d: %w", e.Reference, err)
			}
		}

		if batch.Row != nil {
			if err := q.InsertRow(ctx, rowToParams(batch.Row)); err != nil {
				return fmt.Errorf("row %s: %w", batch.Row.PeriodKey, err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: period %s: %w", domain.ErrPersistenceFailure, batch.PeriodKey, err)
	}

	return nil
}

// FinishRun records the terminal status of a run.
func (r *LedgerRepository) FinishRun(ctx context.Context, run *domain.Run) error {
	var finishedAt pgtype.Timestamptz
	if run.FinishedAt != nil {
		finishedAt = timeToPgTimestamptz(*run.FinishedAt)
	}

	var affected int64
	err := r.retrier.Retry(ctx, func() error {
		var err error
		affected, err = r.queries.FinishRun(ctx, generated.FinishRunParams{
			ID:            run.ID,
			Status:        string(run.Status),
			LastPeriodKey: run.LastPeriodKey,
			FailureReason: run.FailureReason,
			FinishedAt:    finishedAt,
		})
		return err
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrRunNotFound
	}

	return nil
}

// MaxReference returns the highest reference held by any entry or row, or zero.
func (r *LedgerRepository) MaxReference(ctx context.Context) (int64, error) {
	return r.queries.MaxReference(ctx)
}

// GetRun retrieves a run by ID.
func (r *LedgerRepository) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row, err := r.queries.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}

	return runFromRow(row), nil
}

// ListRuns lists runs, newest first.
func (r *LedgerRepository) ListRuns(ctx context.Context, limit, offset int) ([]*domain.Run, error) {
	rows, err := r.queries.ListRuns(ctx, generated.ListRunsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	runs := make([]*domain.Run, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, runFromRow(row))
	}

	return runs, nil
}

// ListRows returns the rows of a run in reference order.
func (r *LedgerRepository) ListRows(ctx context.Context, runID string) ([]*domain.LedgerRow, error) {
	rows, err := r.queries.ListRowsByRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.LedgerRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.LedgerRow{
			CreatedAt: row.CreatedAt.Time,
			RunID:     row.RunID,
			PeriodKey: row.PeriodKey,
			Reason:    row.Reason,
			Reference: row.Reference,
			Age:       int(row.Age),
			Payout:    numericToDecimal(row.Payout),
			Balances:  balancesFromNumeric(row.Oa, row.Sa, row.Ma, row.Ra, row.Loan, row.Excess),
		})
	}

	return out, nil
}

// ListEntries returns the entries of a run, optionally for one period key.
func (r *LedgerRepository) ListEntries(ctx context.Context, runID, periodKey string) ([]*domain.Entry, error) {
	var (
		rows []generated.LedgerEntry
		err  error
	)
	if periodKey == "" {
		rows, err = r.queries.ListEntriesByRun(ctx, runID)
	} else {
		rows, err = r.queries.ListEntriesByRunAndPeriod(ctx, generated.ListEntriesByRunAndPeriodParams{
			RunID:     runID,
			PeriodKey: periodKey,
		})
	}
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Entry, 0, len(rows))
	for _, row := range rows {
		kind, err := domain.ParseAccountKind(row.Account)
		if err != nil {
			return nil, err
		}
		out = append(out, &domain.Entry{
			CreatedAt: row.CreatedAt.Time,
			RunID:     row.RunID,
			PeriodKey: row.PeriodKey,
			Reason:    row.Reason,
			Reference: row.Reference,
			Age:       int(row.Age),
			Account:   kind,
			Amount:    numericToDecimal(row.Amount),
			Payout:    numericToDecimal(row.Payout),
			Balances:  balancesFromNumeric(row.Oa, row.Sa, row.Ma, row.Ra, row.Loan, row.Excess),
		})
	}

	return out, nil
}

func entryToParams(e *domain.Entry) generated.InsertEntryParams {
	b := e.Balances
	return generated.InsertEntryParams{
		Reference: e.Reference,
		RunID:     e.RunID,
		PeriodKey: e.PeriodKey,
		Account:   e.Account.Code(),
		Amount:    decimalToNumeric(e.Amount),
		Reason:    e.Reason,
		Age:       int32(e.Age),
		Payout:    decimalToNumeric(e.Payout),
		Oa:        decimalToNumeric(b.Ordinary),
		Sa:        decimalToNumeric(b.Special),
		Ma:        decimalToNumeric(b.Medisave),
		Ra:        decimalToNumeric(b.Retirement),
		Loan:      decimalToNumeric(b.Loan),
		Excess:    decimalToNumeric(b.Excess),
		CreatedAt: timeToPgTimestamptz(e.CreatedAt),
	}
}

func rowToParams(row *domain.LedgerRow) generated.InsertRowParams {
	b := row.Balances
	return generated.InsertRowParams{
		Reference: row.Reference,
		RunID:     row.RunID,
		PeriodKey: row.PeriodKey,
		Reason:    row.Reason,
		Age:       int32(row.Age),
		Payout:    decimalToNumeric(row.Payout),
		Oa:        decimalToNumeric(b.Ordinary),
		Sa:        decimalToNumeric(b.Special),
		Ma:        decimalToNumeric(b.Medisave),
		Ra:        decimalToNumeric(b.Retirement),
		Loan:      decimalToNumeric(b.Loan),
		Excess:    decimalToNumeric(b.Excess),
		CreatedAt: timeToPgTimestamptz(row.CreatedAt),
	}
}

func runFromRow(row generated.Run) *domain.Run {
	run := &domain.Run{
		CreatedAt:     row.CreatedAt.Time,
		StartDate:     row.StartDate.Time,
		EndDate:       row.EndDate.Time,
		BirthDate:     row.BirthDate.Time,
		ID:            row.ID,
		Status:        domain.RunStatus(row.Status),
		LastPeriodKey: row.LastPeriodKey,
		FailureReason: row.FailureReason,
	}
	if row.FinishedAt.Valid {
		t := row.FinishedAt.Time
		run.FinishedAt = &t
	}
	return run
}

func balancesFromNumeric(oa, sa, ma, ra, loan, excess pgtype.Numeric) domain.Balances {
	return domain.Balances{
		Ordinary:   numericToDecimal(oa),
		Special:    numericToDecimal(sa),
		Medisave:   numericToDecimal(ma),
		Retirement: numericToDecimal(ra),
		Loan:       numericToDecimal(loan),
		Excess:     numericToDecimal(excess),
	}
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d := decimal.NewFromBigInt(n.Int, 0)
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func timeToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}
