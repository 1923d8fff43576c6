package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsolidationSuffix tags the period key of the age-55 transfer entries.
const ConsolidationSuffix = "-cpf"

// Stamp carries the clock values copied onto every entry of a period.
type Stamp struct {
	RunID     string
	PeriodKey string
	Age       int
	Payout    decimal.Decimal
}

// Entry represents a single balance mutation with the post-mutation snapshot.
type Entry struct {
	CreatedAt time.Time
	RunID     string
	PeriodKey string
	Reason    string
	Reference int64
	Age       int
	Account   AccountKind
	Amount    decimal.Decimal
	Payout    decimal.Decimal
	Balances  Balances
}

// LedgerRow summarises the final balances of one simulated period.
type LedgerRow struct {
	CreatedAt time.Time
	RunID     string
	PeriodKey string
	Reason    string
	Reference int64
	Age       int
	Payout    decimal.Decimal
	Balances  Balances
}

// PeriodBatch is everything one period persists. Row is nil when the period
// is suppressed from the row table.
type PeriodBatch struct {
	RunID     string
	PeriodKey string
	Entries   []*Entry
	Row       *LedgerRow
}
