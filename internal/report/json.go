package report

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/antscrawling/cpfsim/internal/domain"
)

// JSONFormatter writes the header and rows as one indented document.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

type jsonRow struct {
	Reference int64           `json:"reference"`
	PeriodKey string          `json:"period"`
	Age       int             `json:"age"`
	Balances  domain.Balances `json:"balances"`
	Payout    decimal.Decimal `json:"payout"`
	Reason    string          `json:"reason"`
}

type jsonReport struct {
	RunID       string           `json:"run_id,omitempty"`
	Status      string           `json:"status,omitempty"`
	StartDate   string           `json:"start_date,omitempty"`
	EndDate     string           `json:"end_date,omitempty"`
	BirthDate   string           `json:"birth_date,omitempty"`
	StartingAge int              `json:"starting_age"`
	Retirement  *decimal.Decimal `json:"retirement_amount,omitempty"`
	Rows        []jsonRow        `json:"rows"`
}

func (JSONFormatter) Format(r *Report) ([]byte, error) {
	s := Summarize(r)
	doc := jsonReport{
		RunID:       s.RunID,
		Status:      s.Status,
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		BirthDate:   s.BirthDate,
		StartingAge: s.StartingAge,
		Rows:        make([]jsonRow, 0, len(r.Rows)),
	}
	if s.HasBook {
		doc.Retirement = &s.Retirement
	}

	for _, row := range r.Rows {
		doc.Rows = append(doc.Rows, jsonRow{
			Reference: row.Reference,
			PeriodKey: row.PeriodKey,
			Age:       row.Age,
			Balances:  row.Balances,
			Payout:    row.Payout,
			Reason:    row.Reason,
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}
