package payment

import (
	"errors"

	"rsv/src/models"
	"rsv/src/types"
)

// FreeProvider settles zero-total reservations without touching any
// gateway. Always registered last so a real provider gets first pick.
type FreeProvider struct{}

func NewFreeProvider() *FreeProvider {
	return &FreeProvider{}
}

func (p *FreeProvider) Name() string {
	return "free"
}

func (p *FreeProvider) Accept(method types.PaymentMethod, _ *models.Organization) bool {
	return method == types.PAYMENT_METHOD_FREE
}

func (p *FreeProvider) Pay(spec Spec) (*Result, error) {
	if spec.Reservation.Total != 0 {
		return nil, errors.New("free provider cannot settle a non-zero total")
	}
	return &Result{Successful: true, Reference: "free"}, nil
}

func (p *FreeProvider) SupportsRefund() bool {
	return false
}

func (p *FreeProvider) Refund(_ *models.Reservation) error {
	return &CapabilityError{Provider: p.Name(), Operation: "refund"}
}
