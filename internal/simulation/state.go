package simulation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/antscrawling/cpfsim/internal/calendar"
	"github.com/antscrawling/cpfsim/internal/domain"
	"github.com/antscrawling/cpfsim/internal/ledger"
)

// Clock is the simulated position in time.
type Clock struct {
	Period calendar.Period
	Age    int
}

// Key returns the period key under processing.
func (c Clock) Key() string {
	return c.Period.Key
}

// State is the single mutable value a run threads through its steps.
type State struct {
	RunID  string
	Clock  Clock
	Ledger *ledger.Ledger

	// Payout is the drawdown posted in the current period.
	Payout       decimal.Decimal
	TotalPayout  decimal.Decimal
	Consolidated bool
	Stopped      bool

	LastPersisted string
	Periods       int
	Rows          int
}

func newState(runID string, l *ledger.Ledger) *State {
	return &State{RunID: runID, Ledger: l}
}

// advance moves the clock to p and clears per-period values.
func (s *State) advance(p calendar.Period, birth time.Time) {
	s.Clock = Clock{Period: p, Age: calendar.Age(birth, p.AsOf)}
	s.Payout = decimal.Zero
}

// stamp is copied onto every entry recorded for the current period.
func (s *State) stamp() domain.Stamp {
	return domain.Stamp{
		RunID:     s.RunID,
		PeriodKey: s.Clock.Key(),
		Age:       s.Clock.Age,
		Payout:    s.Payout,
	}
}
