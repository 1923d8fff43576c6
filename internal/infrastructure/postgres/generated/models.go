package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type LedgerEntry struct {
	Reference int64              `json:"reference"`
	RunID     string             `json:"run_id"`
	PeriodKey string             `json:"period_key"`
	Account   string             `json:"account"`
	Amount    pgtype.Numeric     `json:"amount"`
	Reason    string             `json:"reason"`
	Age       int32              `json:"age"`
	Payout    pgtype.Numeric     `json:"payout"`
	Oa        pgtype.Numeric     `json:"oa"`
	Sa        pgtype.Numeric     `json:"sa"`
	Ma        pgtype.Numeric     `json:"ma"`
	Ra        pgtype.Numeric     `json:"ra"`
	Loan      pgtype.Numeric     `json:"loan"`
	Excess    pgtype.Numeric     `json:"excess"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type LedgerRow struct {
	Reference int64              `json:"reference"`
	RunID     string             `json:"run_id"`
	PeriodKey string             `json:"period_key"`
	Reason    string             `json:"reason"`
	Age       int32              `json:"age"`
	Payout    pgtype.Numeric     `json:"payout"`
	Oa        pgtype.Numeric     `json:"oa"`
	Sa        pgtype.Numeric     `json:"sa"`
	Ma        pgtype.Numeric     `json:"ma"`
	Ra        pgtype.Numeric     `json:"ra"`
	Loan      pgtype.Numeric     `json:"loan"`
	Excess    pgtype.Numeric     `json:"excess"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type Run struct {
	ID            string             `json:"id"`
	Status        string             `json:"status"`
	StartDate     pgtype.Date        `json:"start_date"`
	EndDate       pgtype.Date        `json:"end_date"`
	BirthDate     pgtype.Date        `json:"birth_date"`
	LastPeriodKey string             `json:"last_period_key"`
	FailureReason string             `json:"failure_reason"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	FinishedAt    pgtype.Timestamptz `json:"finished_at"`
}
