package waitinglist

import (
	"errors"
	"log"

	"rsv/src/hooks"
	"rsv/src/models"
	"rsv/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrAlreadyQueued is returned when the email already holds a live
	// entry for the event.
	ErrAlreadyQueued = errors.New("email already on the waiting list for this event")
	// ErrNotFirstInLine is returned when a buyer tries to acquire a spot
	// out of turn.
	ErrNotFirstInLine = errors.New("not first in line")
)

// Join appends a new entry to the event's waiting queue. The
// (event, email) unique index is the serialization point, so two
// concurrent joins for the same address collapse into one row.
func Join(db *gorm.DB, dispatcher *hooks.Dispatcher, body types.JoinWaitingListRequestBody) (*models.WaitingEntry, error) {
	var event models.Event
	if err := db.Preload("Organization").Where("id = ?", body.EventID).First(&event).Error; err != nil {
		return nil, err
	}
	entry := models.WaitingEntry{
		EventID: body.EventID,
		Email:   body.Email,
		Name:    body.Name,
		Locale:  body.Locale,
		Status:  types.WAITING,
	}
	if err := db.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyQueued
		}
		return nil, err
	}
	if dispatcher != nil {
		scope := hooks.ScopePath(event.Organization.Name, event.Name)
		dispatcher.Enqueue(types.HOOK_WAITING_QUEUE_SUBSCRIPTION, scope, map[string]any{
			"entryId": entry.ID,
			"eventId": event.ID,
			"email":   entry.Email,
		})
	}
	return &entry, nil
}

// FirstWaiting returns the head of the queue for an event, or nil when
// nobody is waiting. Position is creation order.
func FirstWaiting(db *gorm.DB, eventID uint) (*models.WaitingEntry, error) {
	var entry models.WaitingEntry
	err := db.
		Where("event_id = ? AND status = ?", eventID, types.WAITING).
		Order("created_at asc").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Acquire marks the entry as holding a reservation. Guarded on the
// waiting status so a concurrent expiry cannot be overwritten.
func Acquire(db *gorm.DB, entryID uint, reservationID uuid.UUID) error {
	res := db.Model(&models.WaitingEntry{}).
		Where("id = ? AND status = ?", entryID, types.WAITING).
		Updates(map[string]any{
			"status":         types.WAITING_ACQUIRED,
			"reservation_id": reservationID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFirstInLine
	}
	return nil
}

// ExpireByReservationIDs ends every entry attached to one of the given
// reservations. Called when reservations are swept or cancelled so the
// spot opens up for the next buyer in line.
func ExpireByReservationIDs(db *gorm.DB, reservationIDs []uuid.UUID) (int64, error) {
	if len(reservationIDs) == 0 {
		return 0, nil
	}
	res := db.Model(&models.WaitingEntry{}).
		Where("reservation_id IN ? AND status = ?", reservationIDs, types.WAITING_ACQUIRED).
		Update("status", types.WAITING_EXPIRED)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[WaitingList] Released %d acquired entries back to the pool\n", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
