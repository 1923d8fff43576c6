// Package calendar produces the monthly periods a simulation walks through
// and derives the holder's age for each of them.
package calendar

import (
	"errors"
	"iter"
	"time"
)

// KeyLayout formats period keys such as "2025-07".
const KeyLayout = "2006-01"

// MonthsPerYear is the number of periods in one projection year.
const MonthsPerYear = 12

// ErrEmptyRange is returned when the end date precedes the start month.
var ErrEmptyRange = errors.New("end date precedes start month")

// Period is one simulated month.
type Period struct {
	Key string
	// AsOf is the last day of the month.
	AsOf time.Time
	// Index counts periods from 1.
	Index int
}

// Month returns the calendar month of the period.
func (p Period) Month() time.Month {
	return p.AsOf.Month()
}

// IsYearEnd reports whether the period is December.
func (p Period) IsYearEnd() bool {
	return p.AsOf.Month() == time.December
}

// ProjectionYear returns the 1-based projection year the period falls in.
func (p Period) ProjectionYear() int {
	return (p.Index-1)/MonthsPerYear + 1
}

// Sequence is a finite, restartable run of monthly periods.
type Sequence struct {
	first time.Time
	count int
}

// New builds the sequence of months from the month of start through the
// month of end inclusive.
func New(start, end time.Time) (*Sequence, error) {
	first := monthStart(start)
	last := monthStart(end)
	if last.Before(first) {
		return nil, ErrEmptyRange
	}

	count := (last.Year()-first.Year())*MonthsPerYear + int(last.Month()-first.Month()) + 1

	return &Sequence{first: first, count: count}, nil
}

// Len returns the number of periods.
func (s *Sequence) Len() int {
	return s.count
}

// At returns the i-th period, counting from 1.
func (s *Sequence) At(i int) Period {
	start := s.first.AddDate(0, i-1, 0)
	return Period{
		Key:   start.Format(KeyLayout),
		AsOf:  start.AddDate(0, 1, -1),
		Index: i,
	}
}

// All yields every period in calendar order. Each call starts over.
func (s *Sequence) All() iter.Seq[Period] {
	return func(yield func(Period) bool) {
		for i := 1; i <= s.count; i++ {
			if !yield(s.At(i)) {
				return
			}
		}
	}
}

// First returns the opening period.
func (s *Sequence) First() Period {
	return s.At(1)
}

// Age returns the whole years elapsed between birth and at. The year only
// counts once the birth month and day have been reached.
func Age(birth, at time.Time) int {
	age := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		age--
	}
	return age
}

// IsBirthMonth reports whether p falls in the birth month.
func IsBirthMonth(birth time.Time, p Period) bool {
	return p.AsOf.Month() == birth.Month()
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
