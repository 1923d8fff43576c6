package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AgeBand selects the post-55 allocation schedule.
type AgeBand int

const (
	Band56to60 AgeBand = iota
	Band61to65
	Band66to70
	BandAbove70
)

// AgeBands lists the post-55 bands in range order.
var AgeBands = [...]AgeBand{Band56to60, Band61to65, Band66to70, BandAbove70}

var bandNames = [...]string{
	Band56to60:  "56to60",
	Band61to65:  "61to65",
	Band66to70:  "66to70",
	BandAbove70: "above70",
}

func (b AgeBand) String() string {
	if b < Band56to60 || b > BandAbove70 {
		return "unknown"
	}
	return bandNames[b]
}

// BandForAge returns the single post-55 band covering age. The ranges are
// exclusive and checked in order.
func BandForAge(age int) AgeBand {
	switch {
	case age < 60:
		return Band56to60
	case age < 65:
		return Band61to65
	case age < 70:
		return Band66to70
	default:
		return BandAbove70
	}
}

// Allocation is a monthly contribution split across accounts.
type Allocation struct {
	Ordinary   decimal.Decimal
	Special    decimal.Decimal
	Medisave   decimal.Decimal
	Retirement decimal.Decimal
}

// InterestRates are annual rates as fractions (0.025 = 2.5%).
type InterestRates struct {
	OrdinaryBelow55 decimal.Decimal
	OrdinaryAbove55 decimal.Decimal
	Special         decimal.Decimal
	Medisave        decimal.Decimal
	Retirement      decimal.Decimal
}

// ExtraInterest describes the bonus tiers on combined low balances.
type ExtraInterest struct {
	Below55Rate      decimal.Decimal
	Below55Threshold decimal.Decimal

	Above55FirstRate      decimal.Decimal
	Above55FirstThreshold decimal.Decimal
	Above55NextRate       decimal.Decimal
	Above55NextThreshold  decimal.Decimal

	// OrdinaryCap limits how much of the Ordinary balance is eligible.
	OrdinaryCap decimal.Decimal
}

// RetirementSum is one named retirement-sum option.
type RetirementSum struct {
	Amount decimal.Decimal
	Payout decimal.Decimal
}

// Retirement sum names.
const (
	RetirementSumBasic    = "brs"
	RetirementSumFull     = "frs"
	RetirementSumEnhanced = "ers"
)

// LoanSchedule holds the monthly loan payment per projection-year band.
type LoanSchedule struct {
	Year12      decimal.Decimal
	Year3       decimal.Decimal
	Year4Beyond decimal.Decimal
}

// RuleBook is the resolved, read-only configuration of one run.
type RuleBook struct {
	StartDate time.Time
	EndDate   time.Time
	BirthDate time.Time

	OwnsProperty    bool
	PledgesProperty bool
	PayoutType      string
	PayoutAge       int

	Opening  Balances
	Below55  Allocation
	Above55  [len(AgeBands)]Allocation
	Interest InterestRates
	Extra    ExtraInterest
	Sums     map[string]RetirementSum
	Loan     LoanSchedule
}

// RetirementSum returns the named sum, or a zero sum when it is not configured.
func (r *RuleBook) RetirementSum(name string) RetirementSum {
	return r.Sums[strings.ToLower(name)]
}

// RetirementTarget is the amount reserved in the Retirement account at 55:
// half the full retirement sum for a pledged property, otherwise the sum
// named by the payout type.
func (r *RuleBook) RetirementTarget() decimal.Decimal {
	if r.OwnsProperty && r.PledgesProperty {
		return r.RetirementSum(RetirementSumFull).Amount.Div(decimal.NewFromInt(2)).RoundBank(2)
	}
	return r.RetirementSum(r.PayoutType).Amount
}

// Allocation55 returns the post-55 allocation for band.
func (r *RuleBook) Allocation55(band AgeBand) Allocation {
	if band < Band56to60 || band > BandAbove70 {
		return Allocation{}
	}
	return r.Above55[band]
}
