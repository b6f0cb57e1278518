package models

import (
	"rsv/src/types"
)

type Organization struct {
	ID               uint            `gorm:"primarykey;uniqueIndex:slugid" json:"id"`
	Name             string          `json:"name,omitempty"`
	Country          string          `json:"country,omitempty"`
	ContactEmail     string          `json:"email,omitempty"`
	StripeAccountID  *string         `json:"stripe_account_id,omitempty"`
	PaymentVerified  bool            `gorm:"default:false" json:"payment_verified,omitempty"`
	OfflinePayments  bool            `gorm:"default:false" json:"offline_payments,omitempty"`
	Metadata         *types.Metadata `gorm:"type:jsonb" json:"metadata,omitempty"`
	Slug             string          `gorm:"uniqueIndex:slugid" json:"slug"`

	Events []Event `gorm:"foreignKey:organizer_id" json:"-"`

	types.Timestamps
}
