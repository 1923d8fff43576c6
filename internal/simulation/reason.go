package simulation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/antscrawling/cpfsim/internal/calendar"
	"github.com/antscrawling/cpfsim/internal/ledger"
)

// OpeningReason prefixes the entries that seed the opening balances.
const OpeningReason = "Initial Balance of "

// RowReason classifies a period row. The first matching case wins.
func RowReason(age, payoutAge int, retirement decimal.Decimal, p calendar.Period) string {
	switch {
	case age == ledger.RetirementAge:
		return "Age 55 - Special case for CPF payout"
	case retirement.IsZero() && age >= ledger.RetirementAge:
		return fmt.Sprintf("Age %d - RA balance is zero", age)
	case age == payoutAge:
		return fmt.Sprintf("Age %d - CPF payout", age)
	case p.IsYearEnd():
		return fmt.Sprintf("End of year %d - CPF Interest", age)
	default:
		return fmt.Sprintf("Age %d - Regular CPF calculation", age)
	}
}
