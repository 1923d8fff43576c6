package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/antscrawling/cpfsim/internal/domain"
)

// RetirementAge is the age at which the post-55 rules take over.
const RetirementAge = 55

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

// Bonus is the extra interest earned by each interest-bearing account.
type Bonus struct {
	Ordinary   decimal.Decimal
	Special    decimal.Decimal
	Medisave   decimal.Decimal
	Retirement decimal.Decimal
}

// Get returns the bonus for one account.
func (b Bonus) Get(kind domain.AccountKind) decimal.Decimal {
	switch kind {
	case domain.Ordinary:
		return b.Ordinary
	case domain.Special:
		return b.Special
	case domain.Medisave:
		return b.Medisave
	case domain.Retirement:
		return b.Retirement
	}
	return decimal.Zero
}

func (b *Bonus) add(kind domain.AccountKind, v decimal.Decimal) {
	switch kind {
	case domain.Ordinary:
		b.Ordinary = b.Ordinary.Add(v)
	case domain.Special:
		b.Special = b.Special.Add(v)
	case domain.Medisave:
		b.Medisave = b.Medisave.Add(v)
	case domain.Retirement:
		b.Retirement = b.Retirement.Add(v)
	}
}

// Rate returns the annual base rate of an interest-bearing account.
func (l *Ledger) Rate(kind domain.AccountKind, age int) (decimal.Decimal, error) {
	r := l.book.Interest
	switch kind {
	case domain.Ordinary:
		if age < RetirementAge {
			return r.OrdinaryBelow55, nil
		}
		return r.OrdinaryAbove55, nil
	case domain.Special:
		return r.Special, nil
	case domain.Medisave:
		return r.Medisave, nil
	case domain.Retirement:
		return r.Retirement, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s bears no interest", domain.ErrUnknownAccount, kind)
}

// InterestOn returns one year of monthly-compounded interest on amount,
// rounded to cents. Callers invoke it once per simulated year.
func (l *Ledger) InterestOn(kind domain.AccountKind, amount decimal.Decimal, age int) (decimal.Decimal, error) {
	rate, err := l.Rate(kind, age)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() || rate.IsZero() {
		return decimal.Zero, nil
	}

	growth := one.Add(rate.Div(twelve)).Pow(twelve).Sub(one)
	return amount.Mul(growth).RoundBank(2), nil
}

type tier struct {
	limit decimal.Decimal
	rate  decimal.Decimal
}

// ExtraInterest returns the annual bonus on combined low balances. Balances
// fill the tiers in a fixed account order; Ordinary only counts up to its cap.
func (l *Ledger) ExtraInterest(age int) Bonus {
	x := l.book.Extra

	var (
		order []domain.AccountKind
		tiers []tier
	)
	if age < RetirementAge {
		order = []domain.AccountKind{domain.Special, domain.Medisave, domain.Ordinary}
		tiers = []tier{{limit: x.Below55Threshold, rate: x.Below55Rate}}
	} else {
		order = []domain.AccountKind{domain.Retirement, domain.Special, domain.Medisave, domain.Ordinary}
		tiers = []tier{
			{limit: x.Above55FirstThreshold, rate: x.Above55FirstRate},
			{limit: x.Above55NextThreshold, rate: x.Above55NextRate},
		}
	}

	var bonus Bonus
	t := 0
	room := decimal.Zero
	if len(tiers) > 0 {
		room = tiers[0].limit
	}

	for _, kind := range order {
		eligible := decimal.Max(l.balances.Get(kind), decimal.Zero)
		if kind == domain.Ordinary {
			eligible = decimal.Min(eligible, x.OrdinaryCap)
		}

		for eligible.IsPositive() && t < len(tiers) {
			if !room.IsPositive() {
				t++
				if t < len(tiers) {
					room = tiers[t].limit
				}
				continue
			}
			take := decimal.Min(eligible, room)
			bonus.add(kind, take.Mul(tiers[t].rate))
			eligible = eligible.Sub(take)
			room = room.Sub(take)
		}
	}

	bonus.Ordinary = bonus.Ordinary.RoundBank(2)
	bonus.Special = bonus.Special.RoundBank(2)
	bonus.Medisave = bonus.Medisave.RoundBank(2)
	bonus.Retirement = bonus.Retirement.RoundBank(2)

	return bonus
}

// Payout returns the monthly drawdown for the named retirement sum once the
// holder has reached payout age. The caller clamps it to the Retirement balance.
func (l *Ledger) Payout(payoutType string, age int) decimal.Decimal {
	if payoutType == "" || age < l.book.PayoutAge {
		return decimal.Zero
	}
	return l.book.RetirementSum(payoutType).Payout
}
