// Package recurrence expands a recurring schedule into concrete occurrence times.
package recurrence

import (
	"errors"
	"fmt"
	"time"
)

// MaxOccurrences bounds the size of a single generated series.
const MaxOccurrences = 1000

var (
	ErrScheduleConfig     = errors.New("invalid schedule configuration")
	ErrTooManyOccurrences = fmt.Errorf("schedule produces more than %d occurrences", MaxOccurrences)
)

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Rule describes a series starting at Start. Exactly one of Until and Count must be set.
// Count includes the first occurrence; Until is inclusive.
type Rule struct {
	Start     time.Time
	Frequency Frequency
	Interval  int
	Until     *time.Time
	Count     *int
}

func (r Rule) Validate() error {
	if !r.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrScheduleConfig, r.Frequency)
	}
	if r.Interval < 1 {
		return fmt.Errorf("%w: interval must be positive", ErrScheduleConfig)
	}
	if (r.Until == nil) == (r.Count == nil) {
		return fmt.Errorf("%w: exactly one of end_datetime and repeats must be set", ErrScheduleConfig)
	}
	if r.Count != nil && *r.Count < 1 {
		return fmt.Errorf("%w: repeats must be positive", ErrScheduleConfig)
	}
	if r.Until != nil && r.Until.Before(r.Start) {
		return fmt.Errorf("%w: end_datetime is before the first occurrence", ErrScheduleConfig)
	}
	return nil
}

// Dates returns the ordered occurrence times of r, starting with r.Start.
// Monthly and yearly steps are measured from Start, and steps that land on a
// day the month does not have (31 April, 29 February) are skipped.
func Dates(r Rule) ([]time.Time, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.Count != nil && *r.Count > MaxOccurrences {
		return nil, ErrTooManyOccurrences
	}

	var dates []time.Time
	// Bounds the number of skipped steps for month-end starts.
	maxSteps := MaxOccurrences * 50
	for n := 0; n < maxSteps; n++ {
		t, ok := r.step(n)
		if !ok {
			continue
		}
		if r.Until != nil && t.After(*r.Until) {
			break
		}
		if len(dates) == MaxOccurrences {
			return nil, ErrTooManyOccurrences
		}
		dates = append(dates, t)
		if r.Count != nil && len(dates) == *r.Count {
			break
		}
	}
	return dates, nil
}

func (r Rule) step(n int) (time.Time, bool) {
	k := n * r.Interval
	switch r.Frequency {
	case Daily:
		return r.Start.AddDate(0, 0, k), true
	case Weekly:
		return r.Start.AddDate(0, 0, 7*k), true
	case Monthly:
		return addMonths(r.Start, k)
	default:
		return addMonths(r.Start, 12*k)
	}
}

// addMonths reports false when the start's day of month does not exist in the target month.
func addMonths(start time.Time, months int) (time.Time, bool) {
	y, m, d := start.Date()
	first := time.Date(y, m+time.Month(months), 1, start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
	if d > daysIn(first.Year(), first.Month()) {
		return time.Time{}, false
	}
	return first.AddDate(0, 0, d-1), true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
