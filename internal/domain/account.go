package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountKind identifies one of the six compartments of a holder's ledger.
type AccountKind int

const (
	Ordinary AccountKind = iota
	Special
	Medisave
	Retirement
	Loan
	Excess
)

// AccountKinds lists every account in snapshot order.
var AccountKinds = [...]AccountKind{Ordinary, Special, Medisave, Retirement, Loan, Excess}

// InterestBearing lists the accounts that accrue base and extra interest.
var InterestBearing = [...]AccountKind{Ordinary, Special, Medisave, Retirement}

var accountCodes = [...]string{
	Ordinary:   "oa",
	Special:    "sa",
	Medisave:   "ma",
	Retirement: "ra",
	Loan:       "loan",
	Excess:     "excess",
}

// Valid reports whether k is one of the six known accounts.
func (k AccountKind) Valid() bool {
	return k >= Ordinary && k <= Excess
}

// Code returns the short code used in rule tables and storage.
func (k AccountKind) Code() string {
	if !k.Valid() {
		return fmt.Sprintf("account(%d)", int(k))
	}
	return accountCodes[k]
}

func (k AccountKind) String() string {
	return k.Code()
}

// ParseAccountKind resolves a short code such as "oa" or "loan".
func ParseAccountKind(code string) (AccountKind, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	for k, c := range accountCodes {
		if c == code {
			return AccountKind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAccount, code)
}

// Balances is a full snapshot of all six accounts.
type Balances struct {
	Ordinary   decimal.Decimal `json:"oa"`
	Special    decimal.Decimal `json:"sa"`
	Medisave   decimal.Decimal `json:"ma"`
	Retirement decimal.Decimal `json:"ra"`
	Loan       decimal.Decimal `json:"loan"`
	Excess     decimal.Decimal `json:"excess"`
}

// Get returns the balance of account k.
func (b Balances) Get(k AccountKind) decimal.Decimal {
	switch k {
	case Ordinary:
		return b.Ordinary
	case Special:
		return b.Special
	case Medisave:
		return b.Medisave
	case Retirement:
		return b.Retirement
	case Loan:
		return b.Loan
	case Excess:
		return b.Excess
	}
	return decimal.Zero
}

// Set replaces the balance of account k.
func (b *Balances) Set(k AccountKind, v decimal.Decimal) error {
	switch k {
	case Ordinary:
		b.Ordinary = v
	case Special:
		b.Special = v
	case Medisave:
		b.Medisave = v
	case Retirement:
		b.Retirement = v
	case Loan:
		b.Loan = v
	case Excess:
		b.Excess = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAccount, k)
	}
	return nil
}

// Equal reports whether every balance matches.
func (b Balances) Equal(o Balances) bool {
	for _, k := range AccountKinds {
		if !b.Get(k).Equal(o.Get(k)) {
			return false
		}
	}
	return true
}
