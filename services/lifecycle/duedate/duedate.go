// Package duedate computes the next delivery timestamp for a subscription.
package duedate

import (
	"time"

	"github.com/greenbasket/engine/services/lifecycle/db/model"
)

// Next returns the delivery timestamp following from. It is pure: re-running
// a tick after a crash recomputes the same value. Scheduling slippage does
// not accumulate because callers anchor on the due date, not on wall clock.
//
// Monthly keeps the day of month; when the target month is shorter the day
// clamps to that month's last day (Jan 31 -> Feb 28, or Feb 29 in a leap
// year). Unknown frequencies fall back to weekly.
func Next(freq model.Frequency, from time.Time) time.Time {
	switch freq {
	case model.FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case model.FrequencyMonthly:
		return addMonthClamped(from, 1)
	default:
		return from.AddDate(0, 0, 7)
	}
}

func addMonthClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	// First of the target month, then clamp the day. AddDate alone would
	// normalize Feb 31 into March.
	first := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
