// Package simulation walks a holder's accounts through the configured months,
// one period at a time, and hands each period's entries and row to a sink.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/antscrawling/cpfsim/internal/calendar"
	"github.com/antscrawling/cpfsim/internal/domain"
	"github.com/antscrawling/cpfsim/internal/ledger"
)

// Sink persists one period atomically: all of its entries and its row, or nothing.
type Sink interface {
	AppendPeriod(ctx context.Context, batch *domain.PeriodBatch) error
}

// Observer is told about every period that was persisted.
type Observer interface {
	PeriodPersisted(batch *domain.PeriodBatch)
}

// Driver runs one simulation. It is not reusable across runs.
type Driver struct {
	book     *domain.RuleBook
	refs     ledger.ReferenceGenerator
	sink     Sink
	logger   zerolog.Logger
	now      func() time.Time
	observer Observer
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithClock overrides the wall clock used for timestamps.
func WithClock(now func() time.Time) DriverOption {
	return func(d *Driver) {
		d.now = now
	}
}

// WithObserver registers an observer for persisted periods.
func WithObserver(o Observer) DriverOption {
	return func(d *Driver) {
		d.observer = o
	}
}

// NewDriver creates a Driver for one rule book.
func NewDriver(book *domain.RuleBook, refs ledger.ReferenceGenerator, sink Sink, logger zerolog.Logger, opts ...DriverOption) *Driver {
	d := &Driver{
		book:   book,
		refs:   refs,
		sink:   sink,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run simulates every period from the start month through the end month, or
// until the Retirement account is exhausted after 55. Any failure aborts the
// run with a *domain.RunError; the failing period is not persisted.
func (d *Driver) Run(ctx context.Context, runID string) (*domain.RunResult, error) {
	seq, err := calendar.New(d.book.StartDate, d.book.EndDate)
	if err != nil {
		return nil, d.abort(runID, "", err)
	}

	s := newState(runID, ledger.New(d.book, d.refs, ledger.WithClock(d.now)))

	log := d.logger.With().Str("run_id", runID).Logger()
	log.Info().
		Str("start", seq.First().Key).
		Int("periods", seq.Len()).
		Msg("simulation started")

	if err := d.open(ctx, s, seq.First()); err != nil {
		return nil, d.abort(runID, s.LastPersisted, err)
	}

	for p := range seq.All() {
		if err := ctx.Err(); err != nil {
			return nil, d.abort(runID, s.LastPersisted, err)
		}

		if err := d.step(ctx, s, p); err != nil {
			return nil, d.abort(runID, s.LastPersisted, err)
		}

		log.Debug().
			Str("period", p.Key).
			Int("age", s.Clock.Age).
			Str("ra", s.Ledger.Balance(domain.Retirement).String()).
			Msg("period persisted")

		if s.Stopped {
			log.Info().
				Str("period", p.Key).
				Int("age", s.Clock.Age).
				Msg("retirement account exhausted, stopping")
			break
		}
	}

	result := &domain.RunResult{
		RunID:         runID,
		LastPeriodKey: s.LastPersisted,
		Periods:       s.Periods,
		Rows:          s.Rows,
		Entries:       s.Ledger.Recorded(),
		FinalAge:      s.Clock.Age,
		StoppedEarly:  s.Stopped,
		Final:         s.Ledger.Snapshot(),
		TotalPayout:   s.TotalPayout,
	}

	log.Info().
		Str("last_period", result.LastPeriodKey).
		Int("rows", result.Rows).
		Int("entries", result.Entries).
		Str("status", string(result.Status())).
		Msg("simulation finished")

	return result, nil
}

// open records the opening balances. They stay pending and are persisted
// with the first period, so that period commits as one batch.
func (d *Driver) open(ctx context.Context, s *State, first calendar.Period) error {
	s.advance(first, d.book.BirthDate)

	for _, kind := range domain.AccountKinds {
		amount := d.book.Opening.Get(kind)
		if _, err := s.Ledger.RecordInflow(ctx, s.stamp(), kind, amount, OpeningReason+kind.Code()); err != nil {
			return err
		}
	}
	return nil
}

// step runs one period: loan, allocation, year-end interest, payout, the
// early-stop check, the birthday consolidation, then persistence.
func (d *Driver) step(ctx context.Context, s *State, p calendar.Period) error {
	s.advance(p, d.book.BirthDate)

	if err := d.payLoan(ctx, s); err != nil {
		return fmt.Errorf("loan payment %s: %w", p.Key, err)
	}
	if err := d.allocate(ctx, s); err != nil {
		return fmt.Errorf("allocation %s: %w", p.Key, err)
	}
	if p.IsYearEnd() {
		if err := d.accrueInterest(ctx, s); err != nil {
			return fmt.Errorf("interest %s: %w", p.Key, err)
		}
	}
	if err := d.payOut(ctx, s); err != nil {
		return fmt.Errorf("payout %s: %w", p.Key, err)
	}

	s.Stopped = exhausted(s)

	// The row reports the month as it stood before any consolidation.
	closing := s.Ledger.Snapshot()

	if !s.Stopped && d.consolidationDue(s) {
		if err := d.consolidate(ctx, s); err != nil {
			return fmt.Errorf("consolidation %s: %w", p.Key, err)
		}
	}

	ref, err := d.refs.Next(ctx)
	if err != nil {
		return fmt.Errorf("%w: row reference %s: %w", domain.ErrPersistenceFailure, p.Key, err)
	}

	row := &domain.LedgerRow{
		CreatedAt: d.now(),
		RunID:     s.RunID,
		PeriodKey: p.Key,
		Reason:    RowReason(s.Clock.Age, d.book.PayoutAge, closing.Retirement, p),
		Reference: ref,
		Age:       s.Clock.Age,
		Payout:    s.Payout,
		Balances:  closing,
	}

	if err := d.persist(ctx, &domain.PeriodBatch{
		RunID:     s.RunID,
		PeriodKey: p.Key,
		Entries:   s.Ledger.Drain(),
		Row:       row,
	}); err != nil {
		return err
	}

	s.LastPersisted = p.Key
	s.Periods++
	s.Rows++
	return nil
}

func (d *Driver) persist(ctx context.Context, batch *domain.PeriodBatch) error {
	if err := d.sink.AppendPeriod(ctx, batch); err != nil {
		if errors.Is(err, domain.ErrPersistenceFailure) {
			return err
		}
		return fmt.Errorf("%w: period %s: %w", domain.ErrPersistenceFailure, batch.PeriodKey, err)
	}
	if d.observer != nil {
		d.observer.PeriodPersisted(batch)
	}
	return nil
}

func (d *Driver) abort(runID, last string, err error) error {
	d.logger.Error().
		Err(err).
		Str("run_id", runID).
		Str("last_period", last).
		Msg("simulation aborted")

	return &domain.RunError{
		RunID:         runID,
		LastPeriodKey: last,
		Kind:          domain.ErrorKind(err),
		Err:           err,
	}
}
