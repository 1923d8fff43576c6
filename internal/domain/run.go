package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus is the lifecycle state of a simulation run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusStopped   RunStatus = "stopped"
	RunStatusFailed    RunStatus = "failed"
)

// Run records one simulation of one holder.
type Run struct {
	CreatedAt     time.Time
	FinishedAt    *time.Time
	StartDate     time.Time
	EndDate       time.Time
	BirthDate     time.Time
	ID            string
	Status        RunStatus
	LastPeriodKey string
	FailureReason string
}

// RunResult is returned by the simulation driver.
type RunResult struct {
	RunID         string
	LastPeriodKey string
	Periods       int
	Rows          int
	Entries       int
	FinalAge      int
	StoppedEarly  bool
	Final         Balances
	TotalPayout   decimal.Decimal
}

// Status derives the terminal run status from the result.
func (r *RunResult) Status() RunStatus {
	if r.StoppedEarly {
		return RunStatusStopped
	}
	return RunStatusCompleted
}
