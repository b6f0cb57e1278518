package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"

	"rsv/src/engine"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "payment_intent.succeeded":
			pi, id, err := paymentIntentReservation(event.Data.Raw)
			if err != nil {
				log.Printf("[Stripe] %s\n", err.Error())
				break
			}
			if err := apiEngine.ConfirmReservation(id, pi.ID); err != nil {
				if errors.Is(err, engine.ErrTransitionLost) {
					log.Printf("[Stripe] Reservation %s already settled, intent %s\n", id, pi.ID)
					break
				}
				log.Printf("[Stripe] Error confirming reservation %s: %s\n", id, err.Error())
			}
		case "payment_intent.payment_failed":
			pi, id, err := paymentIntentReservation(event.Data.Raw)
			if err != nil {
				log.Printf("[Stripe] %s\n", err.Error())
				break
			}
			log.Printf("[Stripe] Payment intent %s failed for reservation %s\n", pi.ID, id)
			if err := apiEngine.RevertToPending(id); err != nil {
				if errors.Is(err, engine.ErrTransitionLost) {
					break
				}
				log.Printf("[Stripe] Error reverting reservation %s: %s\n", id, err.Error())
			}
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}

func paymentIntentReservation(raw json.RawMessage) (*stripe.PaymentIntent, uuid.UUID, error) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(raw, &pi); err != nil {
		return nil, uuid.Nil, err
	}
	id, err := uuid.Parse(pi.Metadata["reservationId"])
	if err != nil {
		return nil, uuid.Nil, errors.New("payment intent " + pi.ID + " carries no reservation id")
	}
	return &pi, id, nil
}
