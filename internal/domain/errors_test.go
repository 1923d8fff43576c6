package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRunError(t *testing.T) {
	cause := errors.New("unique violation")
	wrapped := fmt.Errorf("%w: period 2025-07: %w", ErrPersistenceFailure, cause)

	err := &RunError{RunID: "r1", LastPeriodKey: "2025-06", Kind: ErrorKind(wrapped), Err: wrapped}

	want := "run r1 aborted after period 2025-06: ledger store rejected write: period 2025-07: unique violation"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
	if strings.Count(err.Error(), ErrPersistenceFailure.Error()) != 1 {
		t.Fatalf("sentinel repeated in %q", err.Error())
	}
	if !errors.Is(err, ErrPersistenceFailure) || !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to match both the kind and the cause")
	}
}

func TestRunError_NoPeriodPersisted(t *testing.T) {
	err := &RunError{RunID: "r2", Kind: ErrorKind(context.Canceled), Err: context.Canceled}

	if err.Error() != "run r2 aborted after period none: context canceled" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatal("expected context.Canceled")
	}
}
