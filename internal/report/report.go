// Package report renders the ledger rows of a run for people and for other
// tools: a styled console table, CSV and JSON.
package report

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/antscrawling/cpfsim/internal/calendar"
	"github.com/antscrawling/cpfsim/internal/domain"
)

// Report is everything a formatter may render. Book is optional; without it
// the console header omits the rule-derived lines.
type Report struct {
	Run  *domain.Run
	Book *domain.RuleBook
	Rows []*domain.LedgerRow
}

// Formatter renders a report in one output format.
type Formatter interface {
	Name() string
	Format(r *Report) ([]byte, error)
}

var formatters = map[string]Formatter{
	"console": ConsoleFormatter{},
	"csv":     CSVFormatter{},
	"json":    JSONFormatter{},
}

// ForName returns the formatter registered under name.
func ForName(name string) (Formatter, error) {
	f, ok := formatters[name]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s (want one of %v)", name, Names())
	}
	return f, nil
}

// Names lists the registered formats.
func Names() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary is the run header shown above the row table.
type Summary struct {
	RunID       string
	Status      string
	StartDate   string
	EndDate     string
	BirthDate   string
	StartingAge int
	Retirement  decimal.Decimal
	Opening     domain.Balances
	HasBook     bool
}

// Summarize derives the header values of r.
func Summarize(r *Report) Summary {
	var s Summary
	if r.Run != nil {
		s.RunID = r.Run.ID
		s.Status = string(r.Run.Status)
		s.StartDate = r.Run.StartDate.Format(dateLayout)
		s.EndDate = r.Run.EndDate.Format(dateLayout)
		s.BirthDate = r.Run.BirthDate.Format(dateLayout)
		s.StartingAge = calendar.Age(r.Run.BirthDate, r.Run.StartDate)
	}
	if r.Book != nil {
		s.HasBook = true
		s.Retirement = r.Book.RetirementTarget()
		s.Opening = r.Book.Opening
	}
	return s
}

const dateLayout = "2006-01-02"

// money formats an amount with two decimals and thousands separators.
func money(d decimal.Decimal) string {
	s := d.StringFixedBank(2)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	whole, frac := s[:len(s)-3], s[len(s)-3:]
	var out []byte
	for i := range len(whole) {
		if i > 0 && (len(whole)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, whole[i])
	}

	if neg {
		return "-" + string(out) + frac
	}
	return string(out) + frac
}
