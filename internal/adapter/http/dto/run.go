package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/antscrawling/cpfsim/internal/domain"
	"github.com/antscrawling/cpfsim/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// BalancesResponse is a snapshot of all six accounts.
type BalancesResponse struct {
	Ordinary   decimal.Decimal `json:"oa"`
	Special    decimal.Decimal `json:"sa"`
	Medisave   decimal.Decimal `json:"ma"`
	Retirement decimal.Decimal `json:"ra"`
	Loan       decimal.Decimal `json:"loan"`
	Excess     decimal.Decimal `json:"excess"`
}

// BalancesFromDomain converts a domain snapshot.
func BalancesFromDomain(b domain.Balances) BalancesResponse {
	return BalancesResponse{
		Ordinary:   b.Ordinary,
		Special:    b.Special,
		Medisave:   b.Medisave,
		Retirement: b.Retirement,
		Loan:       b.Loan,
		Excess:     b.Excess,
	}
}

// RunResponse represents a run in API responses.
type RunResponse struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	StartDate     string     `json:"start_date"`
	EndDate       string     `json:"end_date"`
	BirthDate     string     `json:"birth_date"`
	LastPeriodKey string     `json:"last_period_key,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

const dateLayout = "2006-01-02"

// RunFromDomain converts a domain run to a response.
func RunFromDomain(r *domain.Run) *RunResponse {
	return &RunResponse{
		ID:            r.ID,
		Status:        string(r.Status),
		StartDate:     r.StartDate.Format(dateLayout),
		EndDate:       r.EndDate.Format(dateLayout),
		BirthDate:     r.BirthDate.Format(dateLayout),
		LastPeriodKey: r.LastPeriodKey,
		FailureReason: r.FailureReason,
		CreatedAt:     r.CreatedAt,
		FinishedAt:    r.FinishedAt,
	}
}

// RunsFromDomain converts domain runs to responses.
func RunsFromDomain(runs []*domain.Run) []*RunResponse {
	result := make([]*RunResponse, len(runs))
	for i, r := range runs {
		result[i] = RunFromDomain(r)
	}
	return result
}

// SimulationResponse is returned when a run finishes.
type SimulationResponse struct {
	Run          *RunResponse     `json:"run"`
	Periods      int              `json:"periods"`
	Rows         int              `json:"rows"`
	Entries      int              `json:"entries"`
	FinalAge     int              `json:"final_age"`
	StoppedEarly bool             `json:"stopped_early"`
	TotalPayout  decimal.Decimal  `json:"total_payout"`
	Final        BalancesResponse `json:"final"`
	MissingKeys  []string         `json:"missing_keys,omitempty"`
}

// SimulationFromUseCase converts a finished run.
func SimulationFromUseCase(out *usecase.RunOutput) *SimulationResponse {
	return &SimulationResponse{
		Run:          RunFromDomain(out.Run),
		Periods:      out.Result.Periods,
		Rows:         out.Result.Rows,
		Entries:      out.Result.Entries,
		FinalAge:     out.Result.FinalAge,
		StoppedEarly: out.Result.StoppedEarly,
		TotalPayout:  out.Result.TotalPayout,
		Final:        BalancesFromDomain(out.Result.Final),
		MissingKeys:  out.Missing,
	}
}

// RowResponse represents a ledger row in API responses.
type RowResponse struct {
	Reference int64            `json:"reference"`
	PeriodKey string           `json:"period_key"`
	Age       int              `json:"age"`
	Reason    string           `json:"reason"`
	Payout    decimal.Decimal  `json:"payout"`
	Balances  BalancesResponse `json:"balances"`
	CreatedAt time.Time        `json:"created_at"`
}

// RowsFromDomain converts domain rows to responses.
func RowsFromDomain(rows []*domain.LedgerRow) []*RowResponse {
	result := make([]*RowResponse, len(rows))
	for i, r := range rows {
		result[i] = &RowResponse{
			Reference: r.Reference,
			PeriodKey: r.PeriodKey,
			Age:       r.Age,
			Reason:    r.Reason,
			Payout:    r.Payout,
			Balances:  BalancesFromDomain(r.Balances),
			CreatedAt: r.CreatedAt,
		}
	}
	return result
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	Reference int64            `json:"reference"`
	PeriodKey string           `json:"period_key"`
	Account   string           `json:"account"`
	Amount    decimal.Decimal  `json:"amount"`
	Reason    string           `json:"reason"`
	Age       int              `json:"age"`
	Balances  BalancesResponse `json:"balances"`
	CreatedAt time.Time        `json:"created_at"`
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = &EntryResponse{
			Reference: e.Reference,
			PeriodKey: e.PeriodKey,
			Account:   e.Account.Code(),
			Amount:    e.Amount,
			Reason:    e.Reason,
			Age:       e.Age,
			Balances:  BalancesFromDomain(e.Balances),
			CreatedAt: e.CreatedAt,
		}
	}
	return result
}

// ConsistencyResponse reports the outcome of a ledger replay.
type ConsistencyResponse struct {
	RunID         string   `json:"run_id"`
	Consistent    bool     `json:"consistent"`
	Entries       int      `json:"entries"`
	Rows          int      `json:"rows"`
	Discrepancies []string `json:"discrepancies,omitempty"`
}

// ConsistencyFromUseCase converts a consistency report.
func ConsistencyFromUseCase(r *usecase.ConsistencyReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		RunID:         r.RunID,
		Consistent:    r.Consistent(),
		Entries:       r.Entries,
		Rows:          r.Rows,
		Discrepancies: r.Discrepancies,
	}
}
