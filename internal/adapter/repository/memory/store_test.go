package memory

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antscrawling/cpfsim/internal/domain"
	"github.com/antscrawling/cpfsim/internal/simulation"
)

func newRun(t *testing.T, s *Store, id string, created time.Time) {
	t.Helper()
	require.NoError(t, s.CreateRun(context.Background(), &domain.Run{ID: id, Status: domain.RunStatusRunning, CreatedAt: created}))
}

func TestStore_AppendPeriodIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := New()
	newRun(t, s, "r1", time.Now())

	require.NoError(t, s.AppendPeriod(ctx, &domain.PeriodBatch{
		RunID:     "r1",
		PeriodKey: "2020-01",
		Entries:   []*domain.Entry{{Reference: 1, PeriodKey: "2020-01"}},
		Row:       &domain.LedgerRow{Reference: 2, PeriodKey: "2020-01"},
	}))

	// Reference 2 is already taken by the row above.
	err := s.AppendPeriod(ctx, &domain.PeriodBatch{
		RunID:     "r1",
		PeriodKey: "2020-02",
		Entries:   []*domain.Entry{{Reference: 3, PeriodKey: "2020-02"}, {Reference: 2, PeriodKey: "2020-02"}},
		Row:       &domain.LedgerRow{Reference: 4, PeriodKey: "2020-02"},
	})
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)

	entries, _ := s.ListEntries(ctx, "r1", "")
	rows, _ := s.ListRows(ctx, "r1")
	assert.Len(t, entries, 1)
	assert.Len(t, rows, 1)

	// Reference 3 was not consumed by the failed batch.
	require.NoError(t, s.AppendPeriod(ctx, &domain.PeriodBatch{
		RunID:   "r1",
		Entries: []*domain.Entry{{Reference: 3, PeriodKey: "2020-02"}},
	}))
}

func TestStore_RejectsDuplicateRowAndUnknownRun(t *testing.T) {
	ctx := context.Background()
	s := New()
	newRun(t, s, "r1", time.Now())

	row := &domain.LedgerRow{Reference: 1, PeriodKey: "2020-01"}
	require.NoError(t, s.AppendPeriod(ctx, &domain.PeriodBatch{RunID: "r1", Row: row}))

	err := s.AppendPeriod(ctx, &domain.PeriodBatch{RunID: "r1", Row: &domain.LedgerRow{Reference: 5, PeriodKey: "2020-01"}})
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)

	err = s.AppendPeriod(ctx, &domain.PeriodBatch{RunID: "nope"})
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestStore_RunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newRun(t, s, "a", base)
	newRun(t, s, "b", base.Add(time.Hour))
	newRun(t, s, "c", base.Add(2*time.Hour))

	assert.Error(t, s.CreateRun(ctx, &domain.Run{ID: "a"}))

	runs, err := s.ListRuns(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)

	runs, _ = s.ListRuns(ctx, 10, 5)
	assert.Empty(t, runs)

	require.NoError(t, s.FinishRun(ctx, &domain.Run{ID: "a", Status: domain.RunStatusCompleted, LastPeriodKey: "2025-12"}))
	got, err := s.GetRun(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, got.Status)

	assert.ErrorIs(t, s.FinishRun(ctx, &domain.Run{ID: "zzz"}), domain.ErrRunNotFound)
	_, err = s.GetRun(ctx, "zzz")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestStore_ReferencesIncrease(t *testing.T) {
	s := New()
	prev := int64(0)
	for range 5 {
		ref, err := s.Next(context.Background())
		require.NoError(t, err)
		assert.Greater(t, ref, prev)
		prev = ref
	}
}

func TestStore_MaxReference(t *testing.T) {
	ctx := context.Background()
	s := New()
	newRun(t, s, "r1", time.Now())

	got, err := s.MaxReference(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)

	require.NoError(t, s.AppendPeriod(ctx, &domain.PeriodBatch{
		RunID:   "r1",
		Entries: []*domain.Entry{{Reference: 4, PeriodKey: "2020-01"}},
		Row:     &domain.LedgerRow{Reference: 6, PeriodKey: "2020-01"},
	}))

	got, err = s.MaxReference(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got)
}

func TestStore_DrivesAFullSimulation(t *testing.T) {
	ctx := context.Background()
	s := New()
	newRun(t, s, "sim", time.Now())

	d := func(v string) decimal.Decimal { return decimal.RequireFromString(v) }
	book := &domain.RuleBook{
		StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2020, 3, 31, 0, 0, 0, 0, time.UTC),
		BirthDate: time.Date(1970, 7, 6, 0, 0, 0, 0, time.UTC),
		PayoutAge: 65,
		Opening:   domain.Balances{Ordinary: d("1000"), Special: d("500"), Medisave: d("200")},
		Below55:   domain.Allocation{Ordinary: d("300"), Special: d("100"), Medisave: d("100")},
		Sums:      map[string]domain.RetirementSum{},
	}

	_, err := simulation.NewDriver(book, s, s, zerolog.Nop()).Run(ctx, "sim")
	require.NoError(t, err)

	rows, err := s.ListRows(ctx, "sim")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "1600", rows[1].Balances.Ordinary.String())
	assert.Equal(t, "700", rows[1].Balances.Special.String())
	assert.Equal(t, "400", rows[1].Balances.Medisave.String())

	opening, err := s.ListEntries(ctx, "sim", "2020-01")
	require.NoError(t, err)
	// six opening entries plus three allocations
	assert.Len(t, opening, 9)
}
