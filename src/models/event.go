package models

import (
	"log"
	"rsv/src/types"
	"time"
)

// Event is the purchase context a reservation is made against. Type
// distinguishes one-off ticketed events from subscription descriptors.
type Event struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title,omitempty"`
	Name        string             `json:"name,omitempty"`
	Type        string             `gorm:"default:'event'" json:"type,omitempty"`
	Location    string             `json:"location,omitempty"`
	DateTime    time.Time          `json:"date_time,omitempty"`
	Timezone    string             `gorm:"default:'UTC'" json:"timezone,omitempty"`
	Status      types.TicketStatus `gorm:"default:'draft'" json:"status,omitempty"`
	OrganizerID uint               `json:"organizer,omitempty"`
	Seats       uint               `json:"seats,omitempty"`

	Organization Organization `gorm:"foreignKey:organizer_id" json:"-"`
	Tickets      []Ticket     `json:"tickets,omitempty"`

	types.Timestamps
}

// Location of the event's own time zone; deadline math runs in it.
func (e *Event) TZ() *time.Location {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		log.Printf("Unknown timezone %q for event %d, falling back to UTC\n", e.Timezone, e.ID)
		return time.UTC
	}
	return loc
}
