// Package ledger holds the six account balances of one simulation run and
// records every change as an entry carrying the full post-mutation snapshot.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/antscrawling/cpfsim/internal/domain"
)

// ReferenceGenerator hands out strictly increasing reference numbers.
type ReferenceGenerator interface {
	Next(ctx context.Context) (int64, error)
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// Ledger is owned by a single simulation run and is not safe for concurrent use.
type Ledger struct {
	book     *domain.RuleBook
	refs     ReferenceGenerator
	now      func() time.Time
	balances domain.Balances
	pending  []*domain.Entry
	recorded int
}

// New creates an empty ledger. Opening balances are posted by the caller so
// they appear in the entry trail.
func New(book *domain.RuleBook, refs ReferenceGenerator, opts ...Option) *Ledger {
	l := &Ledger{
		book: book,
		refs: refs,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordInflow adds amount to the account. Negative amounts decrease it.
func (l *Ledger) RecordInflow(ctx context.Context, stamp domain.Stamp, kind domain.AccountKind, amount decimal.Decimal, reason string) (*domain.Entry, error) {
	if err := validate(kind, amount); err != nil {
		return nil, err
	}
	return l.apply(ctx, stamp, kind, amount, reason)
}

// RecordOutflow subtracts amount from the account. The loan account only
// applies what is outstanding; any excess payment is dropped.
func (l *Ledger) RecordOutflow(ctx context.Context, stamp domain.Stamp, kind domain.AccountKind, amount decimal.Decimal, reason string) (*domain.Entry, error) {
	if err := validate(kind, amount); err != nil {
		return nil, err
	}

	if kind == domain.Loan {
		amount = decimal.Min(amount, l.balances.Loan)
	}

	return l.apply(ctx, stamp, kind, amount.Neg(), reason)
}

func (l *Ledger) apply(ctx context.Context, stamp domain.Stamp, kind domain.AccountKind, delta decimal.Decimal, reason string) (*domain.Entry, error) {
	ref, err := l.refs.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: next reference: %w", domain.ErrPersistenceFailure, err)
	}

	next := l.balances.Get(kind).Add(delta)
	if err := l.balances.Set(kind, next); err != nil {
		return nil, err
	}

	entry := &domain.Entry{
		CreatedAt: l.now(),
		RunID:     stamp.RunID,
		PeriodKey: stamp.PeriodKey,
		Reason:    reason,
		Reference: ref,
		Age:       stamp.Age,
		Account:   kind,
		Amount:    delta,
		Payout:    stamp.Payout,
		Balances:  l.balances,
	}

	l.pending = append(l.pending, entry)
	l.recorded++

	return entry, nil
}

func validate(kind domain.AccountKind, amount decimal.Decimal) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrUnknownAccount, kind)
	}
	if !amount.Equal(amount.Truncate(2)) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidAmount, amount)
	}
	return nil
}

// Balance returns the current balance of one account.
func (l *Ledger) Balance(kind domain.AccountKind) decimal.Decimal {
	return l.balances.Get(kind)
}

// Snapshot returns a copy of all six balances.
func (l *Ledger) Snapshot() domain.Balances {
	return l.balances
}

// Entries returns the entries recorded since the last Drain.
func (l *Ledger) Entries() []*domain.Entry {
	out := make([]*domain.Entry, len(l.pending))
	copy(out, l.pending)
	return out
}

// Drain hands the pending entries to the caller and clears them.
func (l *Ledger) Drain() []*domain.Entry {
	out := l.pending
	l.pending = nil
	return out
}

// Recorded is the number of entries recorded over the ledger's lifetime.
func (l *Ledger) Recorded() int {
	return l.recorded
}
