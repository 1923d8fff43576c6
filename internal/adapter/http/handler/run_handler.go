package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/antscrawling/cpfsim/internal/adapter/http/dto"
	"github.com/antscrawling/cpfsim/internal/domain"
	"github.com/antscrawling/cpfsim/internal/rules"
	"github.com/antscrawling/cpfsim/internal/usecase"
)

// SimulationService defines the behavior needed to start runs.
type SimulationService interface {
	Run(ctx context.Context, table rules.Table) (*usecase.RunOutput, error)
}

// LedgerService defines the read side used by RunHandler.
type LedgerService interface {
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*domain.Run, error)
	ListRows(ctx context.Context, runID string) ([]*domain.LedgerRow, error)
	ListEntries(ctx context.Context, runID, periodKey string) ([]*domain.Entry, error)
	CheckConsistency(ctx context.Context, runID string) (*usecase.ConsistencyReport, error)
}

// RunHandler handles simulation run requests.
type RunHandler struct {
	simulationUC SimulationService
	ledgerUC     LedgerService
	maxBody      int64
}

// NewRunHandler creates a new RunHandler. Request bodies larger than maxBody
// bytes are rejected.
func NewRunHandler(simulationUC SimulationService, ledgerUC LedgerService, maxBody int64) *RunHandler {
	return &RunHandler{
		simulationUC: simulationUC,
		ledgerUC:     ledgerUC,
		maxBody:      maxBody,
	}
}

// Create runs a simulation for the rule table in the request body (YAML or JSON).
func (h *RunHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "rule table too large", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	table, err := rules.Parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rule table", err.Error())
		return
	}

	out, err := h.simulationUC.Run(r.Context(), table)
	if err != nil {
		writeError(w, mapDomainError(err), "simulation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.SimulationFromUseCase(out))
}

// List lists runs, newest first.
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	runs, err := h.ledgerUC.ListRuns(r.Context(), limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list runs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RunsFromDomain(runs))
}

// Get retrieves a run by ID.
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}

	run, err := h.ledgerUC.GetRun(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get run", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RunFromDomain(run))
}

// Rows lists the ledger rows of a run.
func (h *RunHandler) Rows(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}

	rows, err := h.ledgerUC.ListRows(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list rows", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RowsFromDomain(rows))
}

// Entries lists the entries of a run, optionally for ?period=YYYY-MM.
func (h *RunHandler) Entries(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}

	entries, err := h.ledgerUC.ListEntries(r.Context(), id, r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Consistency replays a run's entries and reports any snapshot drift.
func (h *RunHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}

	report, err := h.ledgerUC.CheckConsistency(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) && report != nil {
			writeJSON(w, http.StatusConflict, dto.ConsistencyFromUseCase(report))
			return
		}
		writeError(w, mapDomainError(err), "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromUseCase(report))
}

func runID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := domain.ValidateRunID(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid run ID", err.Error())
		return "", false
	}
	return id, true
}
