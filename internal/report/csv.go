package report

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// CSVFormatter writes one line per ledger row, amounts with two decimals.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(r *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"reference", "period", "age", "oa", "sa", "ma", "ra", "loan", "excess", "payout", "reason"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range r.Rows {
		b := row.Balances
		record := []string{
			strconv.FormatInt(row.Reference, 10),
			row.PeriodKey,
			strconv.Itoa(row.Age),
			b.Ordinary.StringFixedBank(2),
			b.Special.StringFixedBank(2),
			b.Medisave.StringFixedBank(2),
			b.Retirement.StringFixedBank(2),
			b.Loan.StringFixedBank(2),
			b.Excess.StringFixedBank(2),
			row.Payout.StringFixedBank(2),
			row.Reason,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
