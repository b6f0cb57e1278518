package models

import (
	"rsv/src/types"

	"github.com/google/uuid"
)

// Ticket is an inventory category (tier) with a bounded number of units.
type Ticket struct {
	ID       uint               `gorm:"primarykey" json:"id"`
	Tier     string             `json:"tier,omitempty"`
	Status   types.TicketStatus `gorm:"default:'draft'" json:"status,omitempty"`
	Price    float64            `json:"price"`
	Currency string             `json:"currency,omitempty"`
	Limit    uint               `json:"limit"`
	EventID  uint               `json:"event_id,omitempty"`

	Event Event `json:"event,omitempty"`

	Stats *TicketStats `gorm:"-" json:"stats,omitempty"`

	types.Timestamps
}

type TicketStats struct {
	TicketID uint `json:"ticket_id,omitempty"`
	Free     uint `json:"free,omitempty"`
	Reserved uint `json:"reserved,omitempty"`
}

// InventoryItem is one reserved unit. A row exists only while some
// reservation holds the unit; releasing inventory deletes the rows, so the
// free count is always Limit minus live rows.
type InventoryItem struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	TicketID      uint      `json:"ticket_id,omitempty"`
	ReservationID uuid.UUID `gorm:"type:uuid" json:"reservation_id,omitempty"`

	Ticket      Ticket      `json:"-"`
	Reservation Reservation `json:"-"`

	types.Timestamps
}
