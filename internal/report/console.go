package report

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/antscrawling/cpfsim/internal/domain"
	"github.com/antscrawling/cpfsim/internal/ledger"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Width(18)
	headStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	cellStyle  = lipgloss.NewStyle().PaddingRight(2)
	numStyle   = cellStyle.Align(lipgloss.Right)
	zeroStyle  = numStyle.Foreground(lipgloss.Color("#E06C75"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

// ConsoleFormatter renders the header and row table with lipgloss styling.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (ConsoleFormatter) Format(r *Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString(renderHeader(Summarize(r)))
	b.WriteString("\n\n")
	b.WriteString(renderTable(r.Rows))
	b.WriteString("\n")

	return []byte(b.String()), nil
}

func renderHeader(s Summary) string {
	line := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
	}

	lines := []string{
		titleStyle.Render("CPF simulation " + s.RunID),
		line("Status", s.Status),
		line("Start date", s.StartDate),
		line("End date", s.EndDate),
		line("Birth date", s.BirthDate),
		line("Starting age", strconv.Itoa(s.StartingAge)),
	}
	if s.HasBook {
		lines = append(lines, line("Retirement amount", money(s.Retirement)))
		for _, k := range domain.AccountKinds {
			lines = append(lines, line("Opening "+k.Code(), money(s.Opening.Get(k))))
		}
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

var tableHeader = []string{"Period", "Age", "OA", "SA", "MA", "RA", "Loan", "Excess", "Payout", "Reason"}

func renderTable(rows []*domain.LedgerRow) string {
	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, tableHeader)
	for _, row := range rows {
		b := row.Balances
		cells = append(cells, []string{
			row.PeriodKey,
			strconv.Itoa(row.Age),
			money(b.Ordinary),
			money(b.Special),
			money(b.Medisave),
			money(b.Retirement),
			money(b.Loan),
			money(b.Excess),
			money(row.Payout),
			row.Reason,
		})
	}

	widths := make([]int, len(tableHeader))
	for _, line := range cells {
		for i, c := range line {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	out := make([]string, 0, len(cells))
	for i, line := range cells {
		rendered := make([]string, len(line))
		for j, c := range line {
			style := cellStyle
			switch {
			case i == 0:
				style = headStyle.PaddingRight(2)
			case j >= 1 && j <= 8:
				style = numStyle
				// An exhausted Retirement account stands out.
				if j == 5 && rows[i-1].Balances.Retirement.IsZero() && rows[i-1].Age > ledger.RetirementAge {
					style = zeroStyle
				}
			}
			rendered[j] = style.Width(widths[j] + 2).Render(c)
		}
		out = append(out, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}

	if len(rows) == 0 {
		out = append(out, "(no rows)")
	}

	return lipgloss.JoinVertical(lipgloss.Left, out...)
}
