/*
Package sqlite is a single-file ledger store for local runs.

Amounts are stored as decimal TEXT so a round trip never goes through a
float. Timestamps are RFC 3339 TEXT in UTC, calendar dates are YYYY-MM-DD.

The schema is created on New. References come from a one-row counter table,
and every period batch is written in a single transaction.

USAGE:

	store, err := sqlite.New("./data/cpfsim.db")
	if err != nil {
		return err
	}
	defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/antscrawling/cpfsim/internal/domain"
)

const dateLayout = "2006-01-02"

// Store implements the ledger repository and reference generator on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and migrates it.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps the counter and the batch transactions serialised.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		birth_date TEXT NOT NULL,
		last_period_key TEXT NOT NULL DEFAULT '',
		failure_reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		finished_at TEXT
	);

	CREATE TABLE IF NOT EXISTS ledger_entries (
		reference INTEGER PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES runs(id),
		period_key TEXT NOT NULL,
		account TEXT NOT NULL,
		amount TEXT NOT NULL,
		reason TEXT NOT NULL,
		age INTEGER NOT NULL,
		payout TEXT NOT NULL,
		oa TEXT NOT NULL,
		sa TEXT NOT NULL,
		ma TEXT NOT NULL,
		ra TEXT NOT NULL,
		loan TEXT NOT NULL,
		excess TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_entries_run_period
		ON ledger_entries(run_id, period_key);

	CREATE TABLE IF NOT EXISTS ledger_rows (
		reference INTEGER PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES runs(id),
		period_key TEXT NOT NULL,
		reason TEXT NOT NULL,
		age INTEGER NOT NULL,
		payout TEXT NOT NULL,
		oa TEXT NOT NULL,
		sa TEXT NOT NULL,
		ma TEXT NOT NULL,
		ra TEXT NOT NULL,
		loan TEXT NOT NULL,
		excess TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (run_id, period_key)
	);

	CREATE TABLE IF NOT EXISTS reference_counter (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		value INTEGER NOT NULL
	);

	INSERT OR IGNORE INTO reference_counter (id, value) VALUES (1, 0);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Next returns the next reference number from the counter table.
func (s *Store) Next(ctx context.Context) (int64, error) {
	var ref int64
	err := s.db.QueryRowContext(ctx,
		`UPDATE reference_counter SET value = value + 1 WHERE id = 1 RETURNING value`).Scan(&ref)
	if err != nil {
		return 0, fmt.Errorf("failed to advance reference counter: %w", err)
	}
	return ref, nil
}

// MaxReference returns the highest reference held by any entry or row, or zero.
func (s *Store) MaxReference(ctx context.Context) (int64, error) {
	var ref int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(reference) FROM ledger_entries), 0),
			COALESCE((SELECT MAX(reference) FROM ledger_rows), 0)
		)`).Scan(&ref)
	if err != nil {
		return 0, fmt.Errorf("failed to read max reference: %w", err)
	}
	return ref, nil
}

func (s *Store) CreateRun(ctx context.Context, run *domain.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, status, start_date, end_date, birth_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		string(run.Status),
		run.StartDate.Format(dateLayout),
		run.EndDate.Format(dateLayout),
		run.BirthDate.Format(dateLayout),
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// AppendPeriod writes the batch in one transaction.
func (s *Store) AppendPeriod(ctx context.Context, batch *domain.PeriodBatch) error {
	if err := s.appendPeriod(ctx, batch); err != nil {
		return fmt.Errorf("%w: period %s: %w", domain.ErrPersistenceFailure, batch.PeriodKey, err)
	}
	return nil
}

func (s *Store) appendPeriod(ctx context.Context, batch *domain.PeriodBatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, batch.RunID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return domain.ErrRunNotFound
	}

	for _, e := range batch.Entries {
		b := e.Balances
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_entries
				(reference, run_id, period_key, account, amount, reason, age, payout,
				 oa, sa, ma, ra, loan, excess, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Reference, e.RunID, e.PeriodKey, e.Account.Code(), e.Amount.String(), e.Reason, e.Age, e.Payout.String(),
			b.Ordinary.String(), b.Special.String(), b.Medisave.String(), b.Retirement.String(), b.Loan.String(), b.Excess.String(),
			e.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("entry %d: %w", e.Reference, err)
		}
	}

	if row := batch.Row; row != nil {
		b := row.Balances
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ledger_rows
				(reference, run_id, period_key, reason, age, payout,
				 oa, sa, ma, ra, loan, excess, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.Reference, row.RunID, row.PeriodKey, row.Reason, row.Age, row.Payout.String(),
			b.Ordinary.String(), b.Special.String(), b.Medisave.String(), b.Retirement.String(), b.Loan.String(), b.Excess.String(),
			row.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("row %s: %w", row.PeriodKey, err)
		}
	}

	return tx.Commit()
}

func (s *Store) FinishRun(ctx context.Context, run *domain.Run) error {
	var finishedAt sql.NullString
	if run.FinishedAt != nil {
		finishedAt = sql.NullString{String: run.FinishedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, last_period_key = ?, failure_reason = ?, finished_at = ?
		WHERE id = ?`,
		string(run.Status), run.LastPeriodKey, run.FailureReason, finishedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

const runColumns = `id, status, start_date, end_date, birth_date, last_period_key, failure_reason, created_at, finished_at`

func (s *Store) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	return run, err
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit, offset int) ([]*domain.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*domain.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) ListRows(ctx context.Context, runID string) ([]*domain.LedgerRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reference, run_id, period_key, reason, age, payout, oa, sa, ma, ra, loan, excess, created_at
		FROM ledger_rows WHERE run_id = ? ORDER BY reference`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.LedgerRow, 0)
	for rows.Next() {
		var (
			r         domain.LedgerRow
			payout    string
			bal       [6]string
			createdAt string
		)
		if err := rows.Scan(&r.Reference, &r.RunID, &r.PeriodKey, &r.Reason, &r.Age, &payout,
			&bal[0], &bal[1], &bal[2], &bal[3], &bal[4], &bal[5], &createdAt); err != nil {
			return nil, err
		}
		if r.Payout, err = decimal.NewFromString(payout); err != nil {
			return nil, err
		}
		if r.Balances, err = parseBalances(bal); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *Store) ListEntries(ctx context.Context, runID, periodKey string) ([]*domain.Entry, error) {
	query := `
		SELECT reference, run_id, period_key, account, amount, reason, age, payout,
		       oa, sa, ma, ra, loan, excess, created_at
		FROM ledger_entries WHERE run_id = ?`
	args := []any{runID}
	if periodKey != "" {
		query += ` AND period_key = ?`
		args = append(args, periodKey)
	}
	query += ` ORDER BY reference`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Entry, 0)
	for rows.Next() {
		var (
			e              domain.Entry
			account        string
			amount, payout string
			bal            [6]string
			createdAt      string
		)
		if err := rows.Scan(&e.Reference, &e.RunID, &e.PeriodKey, &account, &amount, &e.Reason, &e.Age, &payout,
			&bal[0], &bal[1], &bal[2], &bal[3], &bal[4], &bal[5], &createdAt); err != nil {
			return nil, err
		}
		if e.Account, err = domain.ParseAccountKind(account); err != nil {
			return nil, err
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		if e.Payout, err = decimal.NewFromString(payout); err != nil {
			return nil, err
		}
		if e.Balances, err = parseBalances(bal); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, &e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*domain.Run, error) {
	var (
		run                        domain.Run
		status                     string
		start, end, birth, created string
		finished                   sql.NullString
	)
	if err := sc.Scan(&run.ID, &status, &start, &end, &birth, &run.LastPeriodKey, &run.FailureReason, &created, &finished); err != nil {
		return nil, err
	}
	run.Status = domain.RunStatus(status)
	run.StartDate, _ = time.Parse(dateLayout, start)
	run.EndDate, _ = time.Parse(dateLayout, end)
	run.BirthDate, _ = time.Parse(dateLayout, birth)
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	if finished.Valid {
		t, _ := time.Parse(time.RFC3339Nano, finished.String)
		run.FinishedAt = &t
	}
	return &run, nil
}

func parseBalances(v [6]string) (domain.Balances, error) {
	var (
		b   domain.Balances
		err error
	)
	for i, dst := range []*decimal.Decimal{&b.Ordinary, &b.Special, &b.Medisave, &b.Retirement, &b.Loan, &b.Excess} {
		if *dst, err = decimal.NewFromString(v[i]); err != nil {
			return domain.Balances{}, err
		}
	}
	return b, nil
}
