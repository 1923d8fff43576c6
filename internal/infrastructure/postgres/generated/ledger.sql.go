package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createRun = `-- name: CreateRun :exec
INSERT INTO runs (id, status, start_date, end_date, birth_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`

type CreateRunParams struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	StartDate pgtype.Date        `json:"start_date"`
	EndDate   pgtype.Date        `json:"end_date"`
	BirthDate pgtype.Date        `json:"birth_date"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) error {
	_, err := q.db.Exec(ctx, createRun,
		arg.ID,
		arg.Status,
		arg.StartDate,
		arg.EndDate,
		arg.BirthDate,
		arg.CreatedAt,
	)
	return err
}

const finishRun = `-- name: FinishRun :execrows
UPDATE runs
SET status = $2, last_period_key = $3, failure_reason = $4, finished_at = $5
WHERE id = $1;
`

type FinishRunParams struct {
	ID            string             `json:"id"`
	Status        string             `json:"status"`
	LastPeriodKey string             `json:"last_period_key"`
	FailureReason string             `json:"failure_reason"`
	FinishedAt    pgtype.Timestamptz `json:"finished_at"`
}

func (q *Queries) FinishRun(ctx context.Context, arg FinishRunParams) (int64, error) {
	result, err := q.db.Exec(ctx, finishRun,
		arg.ID,
		arg.Status,
		arg.LastPeriodKey,
		arg.FailureReason,
		arg.FinishedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getRun = `-- name: GetRun :one
SELECT id, status, start_date, end_date, birth_date, last_period_key, failure_reason, created_at, finished_at
FROM runs
WHERE id = $1;
`

func (q *Queries) GetRun(ctx context.Context, id string) (Run, error) {
	row := q.db.QueryRow(ctx, getRun, id)
	var i Run
	err := row.Scan(
		&i.ID,
		&i.Status,
		&i.StartDate,
		&i.EndDate,
		&i.BirthDate,
		&i.LastPeriodKey,
		&i.FailureReason,
		&i.CreatedAt,
		&i.FinishedAt,
	)
	return i, err
}

type ListRunsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

const listRuns = `-- name: ListRuns :many
SELECT id, status, start_date, end_date, birth_date, last_period_key, failure_reason, created_at, finished_at
FROM runs
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2;
`

func (q *Queries) ListRuns(ctx context.Context, arg ListRunsParams) ([]Run, error) {
	rows, err := q.db.Query(ctx, listRuns, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Run
	for rows.Next() {
		var i Run
		if err := rows.Scan(
			&i.ID,
			&i.Status,
			&i.StartDate,
			&i.EndDate,
			&i.BirthDate,
			&i.LastPeriodKey,
			&i.FailureReason,
			&i.CreatedAt,
			&i.FinishedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertEntry = `-- name: InsertEntry :exec
INSERT INTO ledger_entries (reference, run_id, period_key, account, amount, reason, age, payout, oa, sa, ma, ra, loan, excess, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
`

type InsertEntryParams struct {
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

func (q *Queries) InsertEntry(ctx context.Context, arg InsertEntryParams) error {
	_, err := q.db.Exec(ctx, insertEntry,
		arg.Reference,
		arg.RunID,
		arg.PeriodKey,
		arg.Account,
		arg.Amount,
		arg.Reason,
		arg.Age,
		arg.Payout,
		arg.Oa,
		arg.Sa,
		arg.Ma,
		arg.Ra,
		arg.Loan,
		arg.Excess,
		arg.CreatedAt,
	)
	return err
}

const insertRow = `-- name: InsertRow :exec
INSERT INTO ledger_rows (reference, run_id, period_key, reason, age, payout, oa, sa, ma, ra, loan, excess, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
`

type InsertRowParams struct {
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

func (q *Queries) InsertRow(ctx context.Context, arg InsertRowParams) error {
	_, err := q.db.Exec(ctx, insertRow,
		arg.Reference,
		arg.RunID,
		arg.PeriodKey,
		arg.Reason,
		arg.Age,
		arg.Payout,
		arg.Oa,
		arg.Sa,
		arg.Ma,
		arg.Ra,
		arg.Loan,
		arg.Excess,
		arg.CreatedAt,
	)
	return err
}

const listEntriesByRun = `-- name: ListEntriesByRun :many
SELECT reference, run_id, period_key, account, amount, reason, age, payout, oa, sa, ma, ra, loan, excess, created_at
FROM ledger_entries
WHERE run_id = $1
ORDER BY reference;
`

func (q *Queries) ListEntriesByRun(ctx context.Context, runID string) ([]LedgerEntry, error) {
	rows, err := q.db.Query(ctx, listEntriesByRun, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerEntry
	for rows.Next() {
		var i LedgerEntry
		if err := rows.Scan(
			&i.Reference,
			&i.RunID,
			&i.PeriodKey,
			&i.Account,
			&i.Amount,
			&i.Reason,
			&i.Age,
			&i.Payout,
			&i.Oa,
			&i.Sa,
			&i.Ma,
			&i.Ra,
			&i.Loan,
			&i.Excess,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type ListEntriesByRunAndPeriodParams struct {
	RunID     string `json:"run_id"`
	PeriodKey string `json:"period_key"`
}

const listEntriesByRunAndPeriod = `-- name: ListEntriesByRunAndPeriod :many
SELECT reference, run_id, period_key, account, amount, reason, age, payout, oa, sa, ma, ra, loan, excess, created_at
FROM ledger_entries
WHERE run_id = $1 AND period_key = $2
ORDER BY reference;
`

func (q *Queries) ListEntriesByRunAndPeriod(ctx context.Context, arg ListEntriesByRunAndPeriodParams) ([]LedgerEntry, error) {
	rows, err := q.db.Query(ctx, listEntriesByRunAndPeriod, arg.RunID, arg.PeriodKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerEntry
	for rows.Next() {
		var i LedgerEntry
		if err := rows.Scan(
			&i.Reference,
			&i.RunID,
			&i.PeriodKey,
			&i.Account,
			&i.Amount,
			&i.Reason,
			&i.Age,
			&i.Payout,
			&i.Oa,
			&i.Sa,
			&i.Ma,
			&i.Ra,
			&i.Loan,
			&i.Excess,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listRowsByRun = `-- name: ListRowsByRun :many
SELECT reference, run_id, period_key, reason, age, payout, oa, sa, ma, ra, loan, excess, created_at
FROM ledger_rows
WHERE run_id = $1
ORDER BY reference;
`

func (q *Queries) ListRowsByRun(ctx context.Context, runID string) ([]LedgerRow, error) {
	rows, err := q.db.Query(ctx, listRowsByRun, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LedgerRow
	for rows.Next() {
		var i LedgerRow
		if err := rows.Scan(
			&i.Reference,
			&i.RunID,
			&i.PeriodKey,
			&i.Reason,
			&i.Age,
			&i.Payout,
			&i.Oa,
			&i.Sa,
			&i.Ma,
			&i.Ra,
			&i.Loan,
			&i.Excess,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const maxReference = `-- name: MaxReference :one
SELECT GREATEST(
    COALESCE((SELECT MAX(reference) FROM ledger_entries), 0),
    COALESCE((SELECT MAX(reference) FROM ledger_rows), 0)
)::BIGINT
`

func (q *Queries) MaxReference(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, maxReference)
	var column_1 int64
	err := row.Scan(&column_1)
	return column_1, err
}

const nextReference = `-- name: NextReference :one
SELECT nextval('ledger_reference_seq')::BIGINT;
`

func (q *Queries) NextReference(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, nextReference)
	var column_1 int64
	err := row.Scan(&column_1)
	return column_1, err
}
