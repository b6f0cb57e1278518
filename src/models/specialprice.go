package models

import (
	"rsv/src/types"
)

// SpecialPriceCode is a discounted-access slot for one ticket category. A row
// starts in waiting with no code; the allocator sweep assigns a unique code.
// The composite unique index is the real serialization point for uniqueness,
// the allocator's pre-check only keeps collisions rare.
type SpecialPriceCode struct {
	ID       uint             `gorm:"primarykey" json:"id"`
	TicketID uint             `gorm:"uniqueIndex:ticket_code" json:"ticket_id,omitempty"`
	Code     *string          `gorm:"uniqueIndex:ticket_code" json:"code,omitempty"`
	Status   types.CodeStatus `gorm:"default:'waiting'" json:"status,omitempty"`
	Price    float64          `json:"price"`

	Ticket Ticket `json:"-"`

	types.Timestamps
}
