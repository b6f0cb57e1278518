package models

import (
	"rsv/src/types"

	"github.com/google/uuid"
)

// Transaction records one payment attempt against a reservation.
type Transaction struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	ReservationID uuid.UUID `gorm:"type:uuid"`
	Currency      string
	Amount        float64
	Provider      string
	SourceName    string
	SourceValue   string
	ReferenceID   string
	Status        string `gorm:"default:'pending'"`
	Metadata      types.JSONB

	types.Timestamps

	Reservation Reservation `json:"-"`
}
