package models

import (
	"rsv/src/types"

	"github.com/google/uuid"
)

// WaitingEntry is one subscriber waiting for inventory on an event. Status is
// driven only by reservation lifecycle transitions, never by direct request.
// The unique index only spans live entries, so a subscriber whose entry
// expired can join the queue again.
type WaitingEntry struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	EventID       uint                `gorm:"uniqueIndex:event_email,where:status <> 'expired'" json:"event_id,omitempty"`
	Email         string              `gorm:"uniqueIndex:event_email" json:"email,omitempty"`
	Name          string              `json:"name,omitempty"`
	Locale        string              `json:"locale,omitempty"`
	Status        types.WaitingStatus `gorm:"default:'waiting'" json:"status,omitempty"`
	ReservationID *uuid.UUID          `gorm:"type:uuid" json:"reservation_id,omitempty"`

	Event Event `json:"-"`

	types.Timestamps
}
