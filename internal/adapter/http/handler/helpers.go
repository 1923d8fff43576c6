package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/antscrawling/cpfsim/internal/adapter/http/dto"
	"github.com/antscrawling/cpfsim/internal/calendar"
	"github.com/antscrawling/cpfsim/internal/domain"
	"github.com/antscrawling/cpfsim/internal/rules"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidIDFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidPeriodKey):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConfigurationMissing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, rules.ErrMalformedValue):
		return http.StatusUnprocessableEntity
	case errors.Is(err, calendar.ErrEmptyRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrPersistenceFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
