package engine

import (
	"testing"
	"time"

	"rsv/src/lib"
	"rsv/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCleanupNoCandidates(t *testing.T) {
	e, mock := newMockEngine(t)

	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	reaped, err := e.CleanupExpiredReservations(time.Now().UTC())
	assert.NoError(t, err)
	assert.Zero(t, reaped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupReapsOfflineWaitToExpired(t *testing.T) {
	e, mock := newMockEngine(t)
	id := uuid.New()
	deadline := time.Now().UTC().Add(-time.Hour)

	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "status", "valid_until"}).
			AddRow(id.String(), 1, string(types.RESERVATION_OFFLINE_PAYMENT), deadline))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reservations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "inventory_items" SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE "waiting_entries" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	reaped, err := e.CleanupExpiredReservations(time.Now().UTC())
	assert.NoError(t, err)
	assert.Equal(t, 1, reaped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupSkipsReservationPaidMidSweep(t *testing.T) {
	e, mock := newMockEngine(t)
	id := uuid.New()
	deadline := time.Now().UTC().Add(-time.Hour)

	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "status", "valid_until"}).
			AddRow(id.String(), 1, string(types.RESERVATION_PENDING), deadline))

	// The buyer paid between the scan and the reap; zero rows match the
	// status guard and the batch moves on without counting it.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reservations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	reaped, err := e.CleanupExpiredReservations(time.Now().UTC())
	assert.NoError(t, err)
	assert.Zero(t, reaped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReapTarget(t *testing.T) {
	assert.Equal(t, types.RESERVATION_EXPIRED, reapTarget(types.RESERVATION_OFFLINE_PAYMENT))
	assert.Equal(t, types.RESERVATION_CANCELED, reapTarget(types.RESERVATION_PENDING))
}

func TestMarkStuckReservations(t *testing.T) {
	e, mock := newMockEngine(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reservations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	parked, err := e.MarkStuckReservations(time.Now().UTC())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), parked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderClaimsMarkerBeforeSending(t *testing.T) {
	e, mock := newMockEngine(t)
	id := uuid.New()
	now := time.Now().UTC()
	deadline := now.Add(12 * time.Hour)

	var sentTo []string
	e.WithMailer(func(input *lib.SendMailInput) error {
		sentTo = append(sentTo, input.To...)
		return nil
	})

	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "buyer_name", "buyer_email", "total", "currency", "valid_until"}).
			AddRow(id.String(), string(types.RESERVATION_OFFLINE_PAYMENT), "Ann", "ann@example.com", 120.0, "EUR", deadline))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reservations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sent, err := e.SendOfflinePaymentReminders(now)
	assert.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"ann@example.com"}, sentTo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderSentAtMostOnce(t *testing.T) {
	e, mock := newMockEngine(t)
	id := uuid.New()
	now := time.Now().UTC()

	mailed := 0
	e.WithMailer(func(input *lib.SendMailInput) error {
		mailed++
		return nil
	})

	mock.ExpectQuery(`SELECT (.+) FROM "reservations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "buyer_email", "valid_until"}).
			AddRow(id.String(), string(types.RESERVATION_OFFLINE_PAYMENT), "bob@example.com", now.Add(time.Hour)))

	// A parallel run claimed the marker first.
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "reservations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	sent, err := e.SendOfflinePaymentReminders(now)
	assert.NoError(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, mailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
