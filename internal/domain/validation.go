package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validation errors
var (
	ErrInvalidIDFormat  = errors.New("invalid ID format")
	ErrInvalidPeriodKey = errors.New("invalid period key")
)

// Pagination limits
const (
	MaxPageSize     = 1000
	DefaultPageSize = 50
)

// ULIDs use Crockford base32: no I, L, O or U.
var runIDRegex = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

var periodKeyRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidateRunID validates a run identifier.
func ValidateRunID(id string) error {
	if !runIDRegex.MatchString(strings.ToUpper(strings.TrimSpace(id))) {
		return fmt.Errorf("%w: %q", ErrInvalidIDFormat, id)
	}

	return nil
}

// ValidatePeriodKey accepts "YYYY-MM" and the consolidation form "YYYY-MM-cpf".
func ValidatePeriodKey(key string) error {
	if !periodKeyRegex.MatchString(strings.TrimSuffix(key, ConsolidationSuffix)) {
		return fmt.Errorf("%w: %q", ErrInvalidPeriodKey, key)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
