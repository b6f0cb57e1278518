package payment

import (
	"errors"
	"fmt"
	"math"

	"rsv/src/lib"
	"rsv/src/models"
	"rsv/src/types"

	"github.com/stripe/stripe-go/v82"
)

// StripeProvider charges cards through Stripe payment intents. A
// synchronous success confirms immediately; anything async resolves
// later through the webhook.
type StripeProvider struct{}

func NewStripeProvider() *StripeProvider {
	return &StripeProvider{}
}

func (p *StripeProvider) Name() string {
	return "stripe"
}

// Accept requires a verified payout account on the organization.
func (p *StripeProvider) Accept(method types.PaymentMethod, org *models.Organization) bool {
	return method == types.PAYMENT_METHOD_CARD && org != nil && org.PaymentVerified && org.StripeAccountID != nil
}

func (p *StripeProvider) Pay(spec Spec) (*Result, error) {
	if spec.GatewayToken == nil || *spec.GatewayToken == "" {
		return nil, errors.New("card payments need a gateway token")
	}
	amount := int64(math.Round(spec.Reservation.Total * 100))
	pi, err := lib.StripeCreatePaymentIntent(amount, spec.Reservation.Currency, *spec.GatewayToken, spec.Reservation.ID.String())
	if err != nil {
		return nil, err
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return &Result{Successful: true, Reference: pi.ID}, nil
	case stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresAction:
		return &Result{Successful: true, Pending: true, Reference: pi.ID}, nil
	default:
		return nil, fmt.Errorf("payment intent %s ended up %s", pi.ID, pi.Status)
	}
}

func (p *StripeProvider) SupportsRefund() bool {
	return true
}

func (p *StripeProvider) Refund(reservation *models.Reservation) error {
	if reservation.PaymentRef == nil || *reservation.PaymentRef == "" {
		return errors.New("reservation has no payment reference to refund")
	}
	_, err := lib.StripeCreateRefund(*reservation.PaymentRef)
	return err
}
