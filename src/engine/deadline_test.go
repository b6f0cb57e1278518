package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d, hh, mm int, loc *time.Location) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, loc)
}

func TestOfflinePaymentDeadlineEventStarted(t *testing.T) {
	now := date(2026, time.June, 11, 9, 0, time.UTC)
	eventStart := date(2026, time.June, 10, 19, 0, time.UTC)

	_, _, err := OfflinePaymentDeadline(eventStart, now, 14)
	assert.ErrorIs(t, err, ErrEventStarted)
}

func TestOfflinePaymentDeadlineSameDay(t *testing.T) {
	now := date(2026, time.June, 10, 9, 13, time.UTC)
	eventStart := date(2026, time.June, 10, 19, 0, time.UTC)

	deadline, sameDay, err := OfflinePaymentDeadline(eventStart, now, 14)
	assert.NoError(t, err)
	assert.True(t, sameDay)
	// On event day no half-day truncation, just a two hour grace window.
	assert.Equal(t, now.Add(2*time.Hour), deadline)
}

func TestOfflinePaymentDeadlineFullWindowAfternoon(t *testing.T) {
	now := date(2026, time.June, 1, 13, 45, time.UTC)
	eventStart := date(2026, time.July, 15, 20, 0, time.UTC)

	deadline, sameDay, err := OfflinePaymentDeadline(eventStart, now, 14)
	assert.NoError(t, err)
	assert.False(t, sameDay)
	assert.Equal(t, date(2026, time.June, 15, 12, 0, time.UTC), deadline)
}

func TestOfflinePaymentDeadlineFullWindowMorning(t *testing.T) {
	now := date(2026, time.June, 1, 9, 10, time.UTC)
	eventStart := date(2026, time.July, 15, 20, 0, time.UTC)

	deadline, sameDay, err := OfflinePaymentDeadline(eventStart, now, 14)
	assert.NoError(t, err)
	assert.False(t, sameDay)
	assert.Equal(t, date(2026, time.June, 15, 0, 0, time.UTC), deadline)
}

func TestOfflinePaymentDeadlineShortenedByEvent(t *testing.T) {
	now := date(2026, time.June, 1, 9, 10, time.UTC)
	eventStart := date(2026, time.June, 5, 18, 0, time.UTC)

	deadline, sameDay, err := OfflinePaymentDeadline(eventStart, now, 14)
	assert.NoError(t, err)
	assert.False(t, sameDay)
	// Four days to the event beats the configured fourteen.
	assert.Equal(t, date(2026, time.June, 5, 0, 0, time.UTC), deadline)
}

func TestOfflinePaymentDeadlineLateNightStillCounts(t *testing.T) {
	// Ten minutes before midnight the event day is still tomorrow, so
	// this is not a same-day reservation.
	now := date(2026, time.June, 9, 23, 50, time.UTC)
	eventStart := date(2026, time.June, 10, 0, 30, time.UTC)

	deadline, sameDay, err := OfflinePaymentDeadline(eventStart, now, 14)
	assert.NoError(t, err)
	assert.False(t, sameDay)
	assert.Equal(t, date(2026, time.June, 10, 12, 0, time.UTC), deadline)
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	assert.NoError(t, err)

	// 2026-03-29 is the spring-forward date in Warsaw; the span has one
	// 23h day in it and must still count as 7 calendar days.
	a := date(2026, time.March, 25, 10, 0, warsaw)
	b := date(2026, time.April, 1, 10, 0, warsaw)
	assert.Equal(t, 7, daysBetween(a, b))
}

func TestTruncateHalfDay(t *testing.T) {
	assert.Equal(t,
		date(2026, time.June, 15, 12, 0, time.UTC),
		truncateHalfDay(date(2026, time.June, 15, 13, 30, time.UTC)))
	assert.Equal(t,
		date(2026, time.June, 15, 0, 0, time.UTC),
		truncateHalfDay(date(2026, time.June, 15, 11, 59, time.UTC)))
	assert.Equal(t,
		date(2026, time.June, 15, 12, 0, time.UTC),
		truncateHalfDay(date(2026, time.June, 15, 12, 0, time.UTC)))
}
