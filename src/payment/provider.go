package payment

import (
	"errors"
	"fmt"
	"time"

	"rsv/src/models"
	"rsv/src/types"
)

// Spec carries everything a provider needs to attempt a charge.
type Spec struct {
	Reservation  *models.Reservation
	Organization *models.Organization
	Method       types.PaymentMethod
	GatewayToken *string
}

// Result reports the outcome of a payment attempt. Pending means the
// provider accepted the job but the money arrives out of band; the
// reservation keeps waiting until it does.
type Result struct {
	Successful bool
	Pending    bool
	Reference  string
	ValidUntil *time.Time
}

// Provider is one way of collecting money. Accept decides applicability
// without side effects; Pay may talk to external gateways.
type Provider interface {
	Name() string
	Accept(method types.PaymentMethod, org *models.Organization) bool
	Pay(spec Spec) (*Result, error)
	SupportsRefund() bool
	Refund(reservation *models.Reservation) error
}

// ErrNoProvider is returned when no registered provider accepts the
// requested method for the organization.
var ErrNoProvider = errors.New("no applicable payment provider")

// CapabilityError is returned when a provider is asked for an operation
// it does not implement, like a refund on bank transfers.
type CapabilityError struct {
	Provider  string
	Operation string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("provider %s does not support %s", e.Provider, e.Operation)
}
