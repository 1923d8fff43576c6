package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/antscrawling/cpfsim/internal/domain"
	"github.com/antscrawling/cpfsim/internal/rules"
	"github.com/antscrawling/cpfsim/internal/simulation"
)

// SimulationUseCase runs simulations against a ledger store.
type SimulationUseCase struct {
	repo    LedgerRepository
	refs    ReferenceGenerator
	idGen   IDGenerator
	metrics MetricsRecorder
	logger  zerolog.Logger
	now     func() time.Time
}

// NewSimulationUseCase creates a new SimulationUseCase.
func NewSimulationUseCase(
	repo LedgerRepository,
	refs ReferenceGenerator,
	idGen IDGenerator,
	metrics MetricsRecorder,
	logger zerolog.Logger,
) *SimulationUseCase {
	return &SimulationUseCase{
		repo:    repo,
		refs:    refs,
		idGen:   idGen,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// RunOutput is everything a caller needs to report a finished run.
type RunOutput struct {
	Run     *domain.Run
	Result  *domain.RunResult
	Book    *domain.RuleBook
	Missing []string
}

// Run resolves the rule table, records a run and drives it to the end. A
// failed run is still recorded, with its failure reason and last period.
func (uc *SimulationUseCase) Run(ctx context.Context, table rules.Table) (*RunOutput, error) {
	resolved, err := rules.Resolve(table, uc.logger)
	if err != nil {
		return nil, err
	}
	for _, key := range resolved.Missing {
		uc.metrics.RecordMissingKey(key)
	}

	book := resolved.Book
	run := &domain.Run{
		ID:        uc.idGen.Generate(),
		Status:    domain.RunStatusRunning,
		StartDate: book.StartDate,
		EndDate:   book.EndDate,
		BirthDate: book.BirthDate,
		CreatedAt: uc.now(),
	}
	if err := uc.repo.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	driver := simulation.NewDriver(book, uc.refs, uc.repo, uc.logger,
		simulation.WithClock(uc.now),
		simulation.WithObserver(periodCounter{uc.metrics}),
	)

	start := time.Now()
	result, runErr := driver.Run(ctx, run.ID)

	finishedAt := uc.now()
	run.FinishedAt = &finishedAt
	if runErr != nil {
		run.Status = domain.RunStatusFailed
		run.FailureReason = runErr.Error()
		var re *domain.RunError
		if errors.As(runErr, &re) {
			run.LastPeriodKey = re.LastPeriodKey
		}
	} else {
		run.Status = result.Status()
		run.LastPeriodKey = result.LastPeriodKey
	}
	uc.metrics.RecordRun(run.Status, time.Since(start))

	// The run record is closed even when the caller's context is gone.
	if err := uc.repo.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		uc.logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to close run record")
		if runErr == nil {
			return nil, err
		}
	}

	if runErr != nil {
		return nil, runErr
	}

	return &RunOutput{
		Run:     run,
		Result:  result,
		Book:    book,
		Missing: resolved.Missing,
	}, nil
}

type periodCounter struct {
	metrics MetricsRecorder
}

func (p periodCounter) PeriodPersisted(batch *domain.PeriodBatch) {
	p.metrics.RecordPeriod(len(batch.Entries))
}
