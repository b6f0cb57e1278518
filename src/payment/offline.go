package payment

import (
	"time"

	"rsv/src/models"
	"rsv/src/types"

	"github.com/google/uuid"
)

// OfflineTransitioner moves a reservation into the bank-transfer wait
// and returns the deadline it was granted.
type OfflineTransitioner interface {
	TransitionToOfflinePayment(id uuid.UUID) (*time.Time, error)
}

// OfflineProvider collects nothing itself. It parks the reservation in
// the transfer wait; the actual money is matched later by the transfer
// consumer when the bank statement comes in.
type OfflineProvider struct {
	transitioner OfflineTransitioner
}

func NewOfflineProvider(transitioner OfflineTransitioner) *OfflineProvider {
	return &OfflineProvider{transitioner: transitioner}
}

func (p *OfflineProvider) Name() string {
	return "offline-transfer"
}

// Accept requires the organizer to have opted into offline payments.
func (p *OfflineProvider) Accept(method types.PaymentMethod, org *models.Organization) bool {
	return method == types.PAYMENT_METHOD_TRANSFER && org != nil && org.OfflinePayments
}

func (p *OfflineProvider) Pay(spec Spec) (*Result, error) {
	deadline, err := p.transitioner.TransitionToOfflinePayment(spec.Reservation.ID)
	if err != nil {
		return nil, err
	}
	return &Result{
		Successful: true,
		Pending:    true,
		Reference:  types.PAYMENT_REF_PENDING_TRANSFER,
		ValidUntil: deadline,
	}, nil
}

func (p *OfflineProvider) SupportsRefund() bool {
	return false
}

func (p *OfflineProvider) Refund(_ *models.Reservation) error {
	return &CapabilityError{Provider: p.Name(), Operation: "refund"}
}
