package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Metadata map[string]any

type Env string

const (
	Local      Env = "local"
	Test       Env = "test"
	Production Env = "production"
)

type ReservationStatus string

const (
	RESERVATION_PENDING         ReservationStatus = "pending"
	RESERVATION_IN_PAYMENT      ReservationStatus = "in_payment"
	RESERVATION_OFFLINE_PAYMENT ReservationStatus = "offline_payment"
	RESERVATION_STUCK           ReservationStatus = "stuck"
	RESERVATION_CONFIRMED       ReservationStatus = "confirmed"
	RESERVATION_CANCELED        ReservationStatus = "canceled"
	RESERVATION_EXPIRED         ReservationStatus = "expired"
)

// TerminalReservationStatuses never transition out except through
// ResolveStuckReservation, which only ever enters them.
var TerminalReservationStatuses = []ReservationStatus{
	RESERVATION_CONFIRMED,
	RESERVATION_CANCELED,
	RESERVATION_EXPIRED,
}

func (s ReservationStatus) Terminal() bool {
	for _, t := range TerminalReservationStatuses {
		if s == t {
			return true
		}
	}
	return false
}

type TicketStatus string

const (
	TICKET_DRAFT       TicketStatus = "draft"
	TICKET_OPEN        TicketStatus = "open"
	TICKET_CLOSED      TicketStatus = "closed"
	TICKET_UNAVAILABLE TicketStatus = "unavailable"
)

type CodeStatus string

const (
	CODE_WAITING  CodeStatus = "waiting"
	CODE_CODED    CodeStatus = "coded"
	CODE_REDEEMED CodeStatus = "redeemed"
)

type WaitingStatus string

const (
	WAITING          WaitingStatus = "waiting"
	WAITING_ACQUIRED WaitingStatus = "acquired"
	WAITING_EXPIRED  WaitingStatus = "expired"
)

type PaymentMethod string

const (
	PAYMENT_METHOD_CARD     PaymentMethod = "card"
	PAYMENT_METHOD_TRANSFER PaymentMethod = "transfer"
	PAYMENT_METHOD_FREE     PaymentMethod = "free"
)

// PAYMENT_REF_PENDING_TRANSFER marks an offline hold: the reservation is held
// but no money has moved yet.
const PAYMENT_REF_PENDING_TRANSFER = "pending-transfer"

type HookEvent string

const (
	HOOK_RESERVATION_CONFIRMATION   HookEvent = "RESERVATION_CONFIRMATION"
	HOOK_TICKET_ASSIGNMENT          HookEvent = "TICKET_ASSIGNMENT"
	HOOK_WAITING_QUEUE_SUBSCRIPTION HookEvent = "WAITING_QUEUE_SUBSCRIPTION"
	HOOK_INVOICE_GENERATION         HookEvent = "INVOICE_GENERATION"
	HOOK_TAX_ID_VALIDATION          HookEvent = "TAX_ID_VALIDATION"
	HOOK_RESERVATIONS_EXPIRED       HookEvent = "RESERVATIONS_EXPIRED"
	HOOK_RESERVATIONS_CANCELED      HookEvent = "RESERVATIONS_CANCELLED"
)

type CreateReservationRequestBody struct {
	TicketID     uint   `json:"ticket" binding:"required"`
	Qty          uint8  `json:"qty" binding:"required,min=1"`
	BuyerName    string `json:"name" binding:"required"`
	BuyerEmail   string `json:"email" binding:"required,email"`
	Address      string `json:"address,omitempty"`
	Locale       string `json:"locale,omitempty"`
	WantsInvoice bool   `json:"invoice,omitempty"`
	VATID        string `json:"vat_id,omitempty"`
	FromWaiting  bool   `json:"from_waiting,omitempty"`
}

type PayReservationRequestBody struct {
	Method       string  `json:"method" binding:"required,paymentmethod"`
	GatewayToken *string `json:"token,omitempty"`
}

type JoinWaitingListRequestBody struct {
	EventID uint   `json:"event" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Name    string `json:"name,omitempty"`
	Locale  string `json:"locale,omitempty"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type Handler func(payload string)
