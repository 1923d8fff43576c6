package rules

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/antscrawling/cpfsim/internal/domain"
)

// Rule table keys.
const (
	KeyStartDate       = "startdate"
	KeyEndDate         = "enddate"
	KeyBirthDate       = "birthdate"
	KeyOwnsProperty    = "ownhdb"
	KeyPledgesProperty = "pledgeyourhdbat55"
	KeyPayoutType      = "payouttype"
	KeyPayoutAge       = "cpfpayoutage"
)

// Defaults applied when the matching key is absent.
const (
	DefaultPayoutAge        = 65
	DefaultOrdinaryCap      = 20000
	DefaultBelow55Threshold = 60000
	DefaultFirstThreshold   = 30000
	DefaultNextThreshold    = 30000
)

var hundred = decimal.NewFromInt(100)

// Result is a resolved rule book plus the keys that fell back to defaults.
type Result struct {
	Book    *domain.RuleBook
	Missing []string
}

// Resolve maps the flat table into a typed rule book. Missing keys are
// logged and defaulted. Missing dates and malformed values are errors.
func Resolve(t Table, logger zerolog.Logger) (*Result, error) {
	m := &mapper{table: t, logger: logger}
	book := &domain.RuleBook{Sums: make(map[string]domain.RetirementSum)}

	book.StartDate = m.date(KeyStartDate)
	book.EndDate = m.date(KeyEndDate)
	book.BirthDate = m.date(KeyBirthDate)

	book.OwnsProperty = m.flag(KeyOwnsProperty)
	book.PledgesProperty = m.flag(KeyPledgesProperty)
	book.PayoutType = m.text(KeyPayoutType)
	book.PayoutAge = m.integer(KeyPayoutAge, DefaultPayoutAge)

	for _, k := range domain.AccountKinds {
		_ = book.Opening.Set(k, m.amount("balances."+k.Code(), 0))
	}

	book.Below55 = domain.Allocation{
		Ordinary: m.amount("allocation.below55.oa.amount", 0),
		Special:  m.amount("allocation.below55.sa.amount", 0),
		Medisave: m.amount("allocation.below55.ma.amount", 0),
	}
	for _, band := range domain.AgeBands {
		book.Above55[band] = domain.Allocation{
			Ordinary:   m.amount(bandKey("oa", band), 0),
			Medisave:   m.amount(bandKey("ma", band), 0),
			Retirement: m.amount(bandKey("ra", band), 0),
		}
	}

	book.Interest = domain.InterestRates{
		OrdinaryBelow55: m.rate("interestrates.oabelow55"),
		OrdinaryAbove55: m.rate("interestrates.oaabove55"),
		Special:         m.rate("interestrates.sa"),
		Medisave:        m.rate("interestrates.ma"),
		Retirement:      m.rate("interestrates.ra"),
	}

	book.Extra = domain.ExtraInterest{
		Below55Rate:           m.rate("extrainterest.below55"),
		Below55Threshold:      m.amount("extrainterest.below55threshold", DefaultBelow55Threshold),
		Above55FirstRate:      m.rate("extrainterest.first30kabove55"),
		Above55FirstThreshold: m.amount("extrainterest.first30kthreshold", DefaultFirstThreshold),
		Above55NextRate:       m.rate("extrainterest.next30kabove55"),
		Above55NextThreshold:  m.amount("extrainterest.next30kthreshold", DefaultNextThreshold),
		OrdinaryCap:           m.amount("extrainterest.oacap", DefaultOrdinaryCap),
	}

	for _, name := range []string{domain.RetirementSumBasic, domain.RetirementSumFull, domain.RetirementSumEnhanced} {
		book.Sums[name] = domain.RetirementSum{
			Amount: m.amount("retirementsums."+name+".amount", 0),
			Payout: m.amount("retirementsums."+name+".payout", 0),
		}
	}

	book.Loan = domain.LoanSchedule{
		Year12:      m.amount("loanpayments.year12", 0),
		Year3:       m.amount("loanpayments.year3", 0),
		Year4Beyond: m.amount("loanpayments.year4beyond", 0),
	}

	if m.err != nil {
		return nil, m.err
	}

	return &Result{Book: book, Missing: m.missing}, nil
}

func bandKey(account string, band domain.AgeBand) string {
	return fmt.Sprintf("allocation.above55.%s.%s.amount", account, band)
}

// mapper keeps the first error so Resolve reads as a flat list of lookups.
type mapper struct {
	table   Table
	logger  zerolog.Logger
	missing []string
	err     error
}

func (m *mapper) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

func (m *mapper) miss(key, fallback string) {
	m.missing = append(m.missing, key)
	m.logger.Warn().
		Str("key", key).
		Str("default", fallback).
		Msg("rule table key missing, using default")
}

func (m *mapper) date(key string) (d time.Time) {
	d, ok, err := m.table.Date(key)
	if err != nil {
		m.fail(err)
		return d
	}
	if !ok {
		m.fail(fmt.Errorf("%w: %s", domain.ErrConfigurationMissing, key))
	}
	return d
}

func (m *mapper) amount(key string, fallback int64) decimal.Decimal {
	d, ok, err := m.table.Decimal(key)
	if err != nil {
		m.fail(err)
		return decimal.Zero
	}
	if !ok {
		def := decimal.NewFromInt(fallback)
		m.miss(key, def.String())
		return def
	}
	return d.RoundBank(2)
}

// rate converts a percentage into a fraction.
func (m *mapper) rate(key string) decimal.Decimal {
	d, ok, err := m.table.Decimal(key)
	if err != nil {
		m.fail(err)
		return decimal.Zero
	}
	if !ok {
		m.miss(key, "0")
		return decimal.Zero
	}
	return d.Div(hundred)
}

func (m *mapper) integer(key string, fallback int) int {
	n, ok, err := m.table.Int(key)
	if err != nil {
		m.fail(err)
		return fallback
	}
	if !ok {
		m.miss(key, fmt.Sprint(fallback))
		return fallback
	}
	return n
}

func (m *mapper) flag(key string) bool {
	b, ok, err := m.table.Bool(key)
	if err != nil {
		m.fail(err)
		return false
	}
	if !ok {
		m.miss(key, "no")
	}
	return b
}

func (m *mapper) text(key string) string {
	s, ok := m.table.Text(key)
	if !ok {
		m.miss(key, "")
	}
	return s
}
