package domain

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrConfigurationMissing = errors.New("required configuration value missing")

	// Ledger errors
	ErrUnknownAccount = errors.New("unknown account")
	ErrInvalidAmount  = errors.New("amount is not representable in cents")

	// Store errors
	ErrPersistenceFailure = errors.New("ledger store rejected write")
	ErrRunNotFound        = errors.New("run not found")
)

// RunError reports an aborted simulation run. Kind is matched by errors.Is
// but not repeated in the message; Err already carries it.
type RunError struct {
	RunID         string
	LastPeriodKey string
	Kind          error
	Err           error
}

func (e *RunError) Error() string {
	last := e.LastPeriodKey
	if last == "" {
		last = "none"
	}
	return fmt.Sprintf("run %s aborted after period %s: %v", e.RunID, last, e.Err)
}

func (e *RunError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ErrorKind classifies err into one of the sentinel kinds above.
func ErrorKind(err error) error {
	for _, kind := range []error{
		ErrPersistenceFailure,
		ErrUnknownAccount,
		ErrInvalidAmount,
		ErrConfigurationMissing,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return err
}
