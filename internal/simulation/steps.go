package simulation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/antscrawling/cpfsim/internal/calendar"
	"github.com/antscrawling/cpfsim/internal/domain"
	"github.com/antscrawling/cpfsim/internal/ledger"
)

// ConsolidationReason tags the entries of the age-55 transfer.
const ConsolidationReason = "transfer_cpf_age=55"

// loanPayment returns the scheduled payment for the projection year. From
// year 4 the payment never exceeds what is outstanding.
func loanPayment(book *domain.RuleBook, year int, outstanding decimal.Decimal) decimal.Decimal {
	switch {
	case year <= 2:
		return book.Loan.Year12
	case year == 3:
		return book.Loan.Year3
	default:
		return decimal.Min(book.Loan.Year4Beyond, outstanding)
	}
}

// payLoan moves the scheduled payment from Ordinary to Loan.
func (d *Driver) payLoan(ctx context.Context, s *State) error {
	outstanding := s.Ledger.Balance(domain.Loan)
	if !outstanding.IsPositive() {
		return nil
	}

	year := s.Clock.Period.ProjectionYear()
	amount := loanPayment(d.book, year, outstanding)
	if !amount.IsPositive() {
		return nil
	}

	reason := fmt.Sprintf("Loan payment from OA Account at year %d age %d", year, s.Clock.Age)
	if _, err := s.Ledger.RecordOutflow(ctx, s.stamp(), domain.Ordinary, amount, reason); err != nil {
		return err
	}
	_, err := s.Ledger.RecordOutflow(ctx, s.stamp(), domain.Loan, amount, reason)
	return err
}

// contributesBelow55 reports whether the below-55 schedule applies: before 55,
// and in the month the holder turns 55.
func contributesBelow55(age int, birthMonth bool) bool {
	return age < ledger.RetirementAge || (age == ledger.RetirementAge && birthMonth)
}

// allocate posts the monthly contribution for the holder's age.
func (d *Driver) allocate(ctx context.Context, s *State) error {
	age := s.Clock.Age

	var (
		alloc    domain.Allocation
		accounts []domain.AccountKind
	)
	if contributesBelow55(age, calendar.IsBirthMonth(d.book.BirthDate, s.Clock.Period)) {
		alloc = d.book.Below55
		accounts = []domain.AccountKind{domain.Ordinary, domain.Special, domain.Medisave}
	} else {
		alloc = d.book.Allocation55(domain.BandForAge(age))
		accounts = []domain.AccountKind{domain.Ordinary, domain.Medisave, domain.Retirement}
	}

	for _, kind := range accounts {
		amount := allocationFor(alloc, kind)
		reason := fmt.Sprintf("Allocation for %s at age %d", kind, age)
		if _, err := s.Ledger.RecordInflow(ctx, s.stamp(), kind, amount, reason); err != nil {
			return err
		}
	}
	return nil
}

func allocationFor(a domain.Allocation, kind domain.AccountKind) decimal.Decimal {
	switch kind {
	case domain.Ordinary:
		return a.Ordinary
	case domain.Special:
		return a.Special
	case domain.Medisave:
		return a.Medisave
	case domain.Retirement:
		return a.Retirement
	}
	return decimal.Zero
}

// accrueInterest posts base interest then extra interest for every
// interest-bearing account. Only called for December.
func (d *Driver) accrueInterest(ctx context.Context, s *State) error {
	age := s.Clock.Age

	var base [len(domain.InterestBearing)]decimal.Decimal
	for i, kind := range domain.InterestBearing {
		balance := s.Ledger.Balance(kind)
		if !balance.IsPositive() {
			continue
		}
		interest, err := s.Ledger.InterestOn(kind, balance, age)
		if err != nil {
			return err
		}
		base[i] = interest
	}

	// Extra interest is computed on the balances before any of this year's
	// interest is credited.
	bonus := s.Ledger.ExtraInterest(age)

	for i, kind := range domain.InterestBearing {
		reason := fmt.Sprintf("Interest for %s at age %d", kind, age)
		if _, err := s.Ledger.RecordInflow(ctx, s.stamp(), kind, base[i], reason); err != nil {
			return err
		}
	}
	for _, kind := range domain.InterestBearing {
		reason := fmt.Sprintf("Extra interest for %s at age %d", kind, age)
		if _, err := s.Ledger.RecordInflow(ctx, s.stamp(), kind, bonus.Get(kind), reason); err != nil {
			return err
		}
	}
	return nil
}

// payOut transfers the monthly drawdown from Retirement to Excess.
func (d *Driver) payOut(ctx context.Context, s *State) error {
	if d.book.PayoutType == "" {
		return nil
	}

	ra := s.Ledger.Balance(domain.Retirement)
	if !ra.IsPositive() {
		s.Payout = decimal.Zero
		return nil
	}

	payout := decimal.Min(decimal.Max(s.Ledger.Payout(d.book.PayoutType, s.Clock.Age), decimal.Zero), ra)
	if payout.IsZero() {
		return nil
	}

	s.Payout = payout
	s.TotalPayout = s.TotalPayout.Add(payout)

	reason := fmt.Sprintf("CPF payout at age %d", s.Clock.Age)
	if _, err := s.Ledger.RecordOutflow(ctx, s.stamp(), domain.Retirement, payout, reason); err != nil {
		return err
	}
	_, err := s.Ledger.RecordInflow(ctx, s.stamp(), domain.Excess, payout, reason)
	return err
}

// exhausted reports the early-stop condition.
func exhausted(s *State) bool {
	return s.Ledger.Balance(domain.Retirement).IsZero() && s.Clock.Age > ledger.RetirementAge
}

// consolidationDue reports whether this is the birthday month at 55.
func (d *Driver) consolidationDue(s *State) bool {
	return !s.Consolidated &&
		s.Clock.Age == ledger.RetirementAge &&
		calendar.IsBirthMonth(d.book.BirthDate, s.Clock.Period)
}

// Consolidation is the split of Ordinary and Special at 55.
type Consolidation struct {
	Ordinary   decimal.Decimal
	Special    decimal.Decimal
	Loan       decimal.Decimal
	Retirement decimal.Decimal
	Excess     decimal.Decimal
}

// PlanConsolidation closes Ordinary and Special: the outstanding loan is
// netted first, Retirement is topped up to target and the rest goes to Excess.
func PlanConsolidation(b domain.Balances, target decimal.Decimal) Consolidation {
	available := b.Ordinary.Add(b.Special)
	loan := decimal.Min(b.Loan, decimal.Max(available, decimal.Zero))
	remainder := available.Sub(loan)
	shortfall := decimal.Max(target.Sub(b.Retirement), decimal.Zero)
	toRA := decimal.Min(shortfall, decimal.Max(remainder, decimal.Zero))

	return Consolidation{
		Ordinary:   b.Ordinary.Neg(),
		Special:    b.Special.Neg(),
		Loan:       loan.Neg(),
		Retirement: toRA,
		Excess:     remainder.Sub(toRA),
	}
}

// consolidate posts the age-55 transfer under the synthetic period key.
func (d *Driver) consolidate(ctx context.Context, s *State) error {
	plan := PlanConsolidation(s.Ledger.Snapshot(), d.book.RetirementTarget())

	stamp := s.stamp()
	stamp.PeriodKey = s.Clock.Key() + domain.ConsolidationSuffix

	for _, leg := range []struct {
		kind   domain.AccountKind
		amount decimal.Decimal
	}{
		{domain.Ordinary, plan.Ordinary},
		{domain.Special, plan.Special},
		{domain.Loan, plan.Loan},
		{domain.Retirement, plan.Retirement},
		{domain.Excess, plan.Excess},
	} {
		if _, err := s.Ledger.RecordInflow(ctx, stamp, leg.kind, leg.amount, ConsolidationReason); err != nil {
			return err
		}
	}

	s.Consolidated = true
	return nil
}
