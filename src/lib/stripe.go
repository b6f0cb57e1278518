package lib

import (
	"context"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// StripeCreatePaymentIntent starts a charge for the given amount in the
// smallest currency unit, tagged with the reservation id so the webhook can
// find its way back.
func StripeCreatePaymentIntent(amount int64, currency, token, reservationId string) (*stripe.PaymentIntent, error) {
	sc := GetStripeClient()
	params := stripe.PaymentIntentCreateParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(token),
		Confirm:       stripe.Bool(true),
		Metadata: map[string]string{
			"reservationId": reservationId,
		},
	}
	pi, err := sc.V1PaymentIntents.Create(context.Background(), &params)
	return pi, err
}

func StripeCreateRefund(paymentIntentId string) (*stripe.Refund, error) {
	sc := GetStripeClient()
	params := stripe.RefundCreateParams{
		PaymentIntent: stripe.String(paymentIntentId),
	}
	refund, err := sc.V1Refunds.Create(context.Background(), &params)
	return refund, err
}
