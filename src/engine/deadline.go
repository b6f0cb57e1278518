package engine

import (
	"math"
	"time"
)

// OfflinePaymentDeadline computes the date an offline (bank transfer) payment
// must have arrived by. Both eventStart and now must already be expressed in
// the event's own time zone. The waiting period is min(days until the event,
// waitingDays); with a full waiting period the deadline is truncated down to
// the nearest half-day boundary (00:00 or 12:00) so pending payments line up
// on predictable cutoffs. On the day of the event itself the deadline is
// now+2h and sameDay is reported so callers can warn operators.
func OfflinePaymentDeadline(eventStart, now time.Time, waitingDays int) (deadline time.Time, sameDay bool, err error) {
	daysToEvent := daysBetween(now, eventStart)
	if daysToEvent < 0 {
		return time.Time{}, false, ErrEventStarted
	}
	waitingPeriod := daysToEvent
	if waitingDays < waitingPeriod {
		waitingPeriod = waitingDays
	}
	if waitingPeriod == 0 {
		return now.Add(2 * time.Hour), true, nil
	}
	deadline = now.AddDate(0, 0, waitingPeriod)
	return truncateHalfDay(deadline), false, nil
}

// daysBetween counts calendar days from a's date to b's date, ignoring the
// time of day. Negative when b's date is before a's.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, a.Location())
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, b.Location())
	// Rounding absorbs DST days that are not exactly 24h long.
	return int(math.Round(bd.Sub(ad).Hours() / 24))
}

func truncateHalfDay(t time.Time) time.Time {
	half := 0
	if t.Hour() >= 12 {
		half = 12
	}
	return time.Date(t.Year(), t.Month(), t.Day(), half, 0, 0, 0, t.Location())
}
