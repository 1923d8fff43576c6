package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antscrawling/cpfsim/internal/domain"
)

func newStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "cpfsim.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createRun(t *testing.T, s *Store, id string, created time.Time) {
	t.Helper()

	require.NoError(t, s.CreateRun(context.Background(), &domain.Run{
		ID:        id,
		Status:    domain.RunStatusRunning,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2060, 12, 31, 0, 0, 0, 0, time.UTC),
		BirthDate: time.Date(1974, 7, 6, 0, 0, 0, 0, time.UTC),
		CreatedAt: created,
	}))
}

func batch(runID string, refs ...int64) *domain.PeriodBatch {
	b := &domain.PeriodBatch{RunID: runID, PeriodKey: "2025-07"}
	for _, ref := range refs {
		b.Entries = append(b.Entries, &domain.Entry{
			RunID:     runID,
			PeriodKey: "2025-07",
			Reason:    "Allocation for oa at age 51",
			Reference: ref,
			Age:       51,
			Account:   domain.Ordinary,
			Amount:    decimal.RequireFromString("300.25"),
			Balances:  domain.Balances{Ordinary: decimal.RequireFromString("1300.25")},
			CreatedAt: time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
		})
	}
	return b
}

func TestStore_NextIsMonotonic(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := s.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestStore_NextSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpfsim.db")
	ctx := context.Background()

	s, err := New(path)
	require.NoError(t, err)
	_, err = s.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

func TestStore_MaxReference(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	got, err := s.MaxReference(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	createRun(t, s, "r1", time.Now())
	b := batch("r1", 7, 9)
	b.Row = &domain.LedgerRow{RunID: "r1", PeriodKey: "2025-07", Reference: 12}
	require.NoError(t, s.AppendPeriod(ctx, b))

	got, err = s.MaxReference(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got)
}

func TestStore_AppendPeriodRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	createRun(t, s, "r1", time.Now())

	b := batch("r1", 1, 2)
	b.Entries[1].PeriodKey = "2025-07" + domain.ConsolidationSuffix
	b.Entries[1].Account = domain.Retirement
	b.Row = &domain.LedgerRow{
		RunID:     "r1",
		PeriodKey: "2025-07",
		Reason:    "Age 55 - Special case for CPF payout",
		Reference: 3,
		Age:       55,
		Payout:    decimal.RequireFromString("860"),
		Balances:  domain.Balances{Ordinary: decimal.RequireFromString("1300.25"), Loan: decimal.NewFromInt(-1)},
	}
	require.NoError(t, s.AppendPeriod(ctx, b))

	entries, err := s.ListEntries(ctx, "r1", "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "300.25", entries[0].Amount.String())
	assert.Equal(t, domain.Retirement, entries[1].Account)

	cpf, err := s.ListEntries(ctx, "r1", "2025-07-cpf")
	require.NoError(t, err)
	require.Len(t, cpf, 1)
	assert.Equal(t, int64(2), cpf[0].Reference)

	rows, err := s.ListRows(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "860", rows[0].Payout.String())
	assert.Equal(t, "-1", rows[0].Balances.Loan.String())
	assert.Equal(t, 55, rows[0].Age)
}

func TestStore_AppendPeriodRollsBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	createRun(t, s, "r1", time.Now())

	require.NoError(t, s.AppendPeriod(ctx, batch("r1", 1)))

	err := s.AppendPeriod(ctx, batch("r1", 2, 1))
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)

	entries, err := s.ListEntries(ctx, "r1", "")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_AppendPeriodUnknownRun(t *testing.T) {
	s := newStore(t)

	err := s.AppendPeriod(context.Background(), batch("ghost", 1))
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestStore_DuplicateRowRejected(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	createRun(t, s, "r1", time.Now())

	row := func(ref int64) *domain.PeriodBatch {
		return &domain.PeriodBatch{RunID: "r1", PeriodKey: "2025-07", Row: &domain.LedgerRow{RunID: "r1", PeriodKey: "2025-07", Reference: ref}}
	}
	require.NoError(t, s.AppendPeriod(ctx, row(1)))
	assert.ErrorIs(t, s.AppendPeriod(ctx, row(2)), domain.ErrPersistenceFailure)
}

func TestStore_RunLifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	createRun(t, s, "a", base)
	createRun(t, s, "b", base.Add(time.Minute))

	assert.Error(t, s.CreateRun(ctx, &domain.Run{ID: "a"}))

	finished := base.Add(time.Hour)
	require.NoError(t, s.FinishRun(ctx, &domain.Run{
		ID:            "a",
		Status:        domain.RunStatusStopped,
		LastPeriodKey: "2040-10",
		FinishedAt:    &finished,
	}))

	got, err := s.GetRun(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusStopped, got.Status)
	assert.Equal(t, "2040-10", got.LastPeriodKey)
	assert.Equal(t, 1974, got.BirthDate.Year())
	require.NotNil(t, got.FinishedAt)
	assert.True(t, got.FinishedAt.Equal(finished))

	runs, err := s.ListRuns(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
	assert.Nil(t, runs[0].FinishedAt)

	_, err = s.GetRun(ctx, "zzz")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
	assert.ErrorIs(t, s.FinishRun(ctx, &domain.Run{ID: "zzz"}), domain.ErrRunNotFound)
}
