// Package memory is an in-process ledger store for the CLI and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/antscrawling/cpfsim/internal/domain"
)

// Store keeps runs, rows and entries in memory. Appends are all-or-nothing.
type Store struct {
	mu      sync.RWMutex
	runs    map[string]*domain.Run
	rows    map[string][]*domain.LedgerRow
	entries map[string][]*domain.Entry
	refs    map[int64]bool
	rowKeys map[string]bool
	next    int64
	maxRef  int64
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		runs:    make(map[string]*domain.Run),
		rows:    make(map[string][]*domain.LedgerRow),
		entries: make(map[string][]*domain.Entry),
		refs:    make(map[int64]bool),
		rowKeys: make(map[string]bool),
	}
}

// Next returns the next reference number.
func (s *Store) Next(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next, nil
}

// MaxReference returns the highest reference stored, or zero.
func (s *Store) MaxReference(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxRef, nil
}

func (s *Store) CreateRun(_ context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; ok {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *Store) AppendPeriod(_ context.Context, batch *domain.PeriodBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check everything first so a rejected batch leaves no trace.
	if _, ok := s.runs[batch.RunID]; !ok {
		return fmt.Errorf("%w: %w: %s", domain.ErrPersistenceFailure, domain.ErrRunNotFound, batch.RunID)
	}
	seen := make(map[int64]bool, len(batch.Entries)+1)
	claim := func(ref int64) error {
		if s.refs[ref] || seen[ref] {
			return fmt.Errorf("%w: duplicate reference %d", domain.ErrPersistenceFailure, ref)
		}
		seen[ref] = true
		return nil
	}
	for _, e := range batch.Entries {
		if err := claim(e.Reference); err != nil {
			return err
		}
	}
	if batch.Row != nil {
		if err := claim(batch.Row.Reference); err != nil {
			return err
		}
		if s.rowKeys[rowKey(batch.RunID, batch.Row.PeriodKey)] {
			return fmt.Errorf("%w: duplicate row for period %s", domain.ErrPersistenceFailure, batch.Row.PeriodKey)
		}
	}

	for ref := range seen {
		s.refs[ref] = true
		s.maxRef = max(s.maxRef, ref)
	}
	for _, e := range batch.Entries {
		cp := *e
		s.entries[batch.RunID] = append(s.entries[batch.RunID], &cp)
	}
	if batch.Row != nil {
		cp := *batch.Row
		s.rows[batch.RunID] = append(s.rows[batch.RunID], &cp)
		s.rowKeys[rowKey(batch.RunID, cp.PeriodKey)] = true
	}
	return nil
}

func (s *Store) FinishRun(_ context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; !ok {
		return domain.ErrRunNotFound
	}
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *Store) GetRun(_ context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	cp := *run
	return &cp, nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(_ context.Context, limit, offset int) ([]*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*domain.Run, 0, len(s.runs))
	for _, r := range s.runs {
		cp := *r
		runs = append(runs, &cp)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	if offset >= len(runs) {
		return []*domain.Run{}, nil
	}
	runs = runs[offset:]
	if limit > 0 && limit < len(runs) {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *Store) ListRows(_ context.Context, runID string) ([]*domain.LedgerRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.LedgerRow, 0, len(s.rows[runID]))
	for _, r := range s.rows[runID] {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) ListEntries(_ context.Context, runID, periodKey string) ([]*domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Entry, 0)
	for _, e := range s.entries[runID] {
		if periodKey != "" && e.PeriodKey != periodKey {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func rowKey(runID, periodKey string) string {
	return runID + "/" + periodKey
}
