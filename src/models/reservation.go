package models

import (
	"rsv/src/types"
	"time"

	"github.com/google/uuid"
)

// Reservation is a hold against ticket inventory for one buyer. Status only
// ever changes through engine transitions; nothing else writes these rows.
type Reservation struct {
	ID             uuid.UUID               `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	EventID        uint                    `json:"event_id,omitempty"`
	TicketID       uint                    `json:"ticket_id,omitempty"`
	Qty            uint8                   `json:"qty,omitempty"`
	Status         types.ReservationStatus `gorm:"default:'pending'" json:"status,omitempty"`
	BuyerName      string                  `json:"name,omitempty"`
	BuyerEmail     string                  `json:"email,omitempty"`
	BillingAddress string                  `json:"address,omitempty"`
	Locale         string                  `json:"locale,omitempty"`
	WantsInvoice   bool                    `json:"invoice,omitempty"`
	VATID          string                  `json:"vat_id,omitempty"`
	Total          float64                 `json:"total"`
	Currency       string                  `json:"currency,omitempty"`
	PaymentMethod  *types.PaymentMethod    `json:"payment_method,omitempty"`
	PaymentRef     *string                 `json:"payment_ref,omitempty"`
	ValidUntil     *time.Time              `json:"valid_until,omitempty"`
	LastReminderAt *time.Time              `json:"-"`

	Event  Event           `json:"event,omitempty"`
	Ticket Ticket          `json:"ticket,omitempty"`
	Items  []InventoryItem `json:"items,omitempty"`

	types.Timestamps
}
