package main

import (
	"errors"
	"log"
	"net/http"

	"rsv/src/db"
	"rsv/src/engine"
	"rsv/src/models"
	"rsv/src/payment"
	"rsv/src/types"
	"rsv/src/waitinglist"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func reservationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/reservations", func(ctx *gin.Context) {
			var body types.CreateReservationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			reservation, err := apiEngine.CreateReservation(body)
			if err != nil {
				switch {
				case errors.Is(err, engine.ErrNoFreeInventory):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				case errors.Is(err, waitinglist.ErrNotFirstInLine):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				case errors.Is(err, gorm.ErrRecordNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
				default:
					log.Printf("Error creating reservation: %s\n", err.Error())
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": reservation})
		}).
		GET("/reservations/:id", func(ctx *gin.Context) {
			id, err := uuid.Parse(ctx.Params.ByName("id"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			reservation, err := apiEngine.GetReservation(id)
			if err != nil {
				err := errors.New("reservation not found")
				ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": reservation})
		}).
		POST("/reservations/:id/pay", func(ctx *gin.Context) {
			id, err := uuid.Parse(ctx.Params.ByName("id"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.PayReservationRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			reservation, org, err := loadReservationWithOrg(id)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				return
			}
			method := types.PaymentMethod(body.Method)
			spec := payment.Spec{
				Reservation:  reservation,
				Organization: org,
				Method:       method,
				GatewayToken: body.GatewayToken,
			}
			if method == types.PAYMENT_METHOD_TRANSFER {
				result, err := apiRegistry.Pay(spec)
				if err != nil {
					payErrorResponse(ctx, id, err)
					return
				}
				ctx.JSON(http.StatusAccepted, gin.H{
					"status":      types.RESERVATION_OFFLINE_PAYMENT,
					"reference":   result.Reference,
					"valid_until": result.ValidUntil,
				})
				return
			}
			if err := apiEngine.BeginPayment(id, method); err != nil {
				payErrorResponse(ctx, id, err)
				return
			}
			result, err := apiRegistry.Pay(spec)
			if err != nil {
				if rerr := apiEngine.RevertToPending(id); rerr != nil {
					log.Printf("Could not revert reservation %s after failed payment: %s\n", id, rerr.Error())
				}
				payErrorResponse(ctx, id, err)
				return
			}
			if result.Pending {
				ctx.JSON(http.StatusAccepted, gin.H{
					"status":    types.RESERVATION_IN_PAYMENT,
					"reference": result.Reference,
				})
				return
			}
			if err := apiEngine.ConfirmReservation(id, result.Reference); err != nil {
				log.Printf("Payment %s settled but confirmation failed for %s: %s\n", result.Reference, id, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "payment settled, confirmation pending"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"status":    types.RESERVATION_CONFIRMED,
				"reference": result.Reference,
			})
		}).
		DELETE("/reservations/:id", func(ctx *gin.Context) {
			id, err := uuid.Parse(ctx.Params.ByName("id"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := apiEngine.CancelReservation(id); err != nil {
				switch {
				case errors.Is(err, gorm.ErrRecordNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				case errors.Is(err, engine.ErrTransitionLost):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				default:
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				}
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/reservations/:id/refund", func(ctx *gin.Context) {
			id, err := uuid.Parse(ctx.Params.ByName("id"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			reservation, org, err := loadReservationWithOrg(id)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
				return
			}
			if reservation.Status != types.RESERVATION_CONFIRMED {
				ctx.JSON(http.StatusConflict, gin.H{"error": "only confirmed reservations can be refunded"})
				return
			}
			if err := apiRegistry.Refund(reservation, org); err != nil {
				var capErr *payment.CapabilityError
				if errors.As(err, &capErr) {
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
					return
				}
				log.Printf("Refund failed for %s: %s\n", id, err.Error())
				ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/reservations/:id/resolve", func(ctx *gin.Context) {
			id, err := uuid.Parse(ctx.Params.ByName("id"))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body struct {
				Target     string `json:"target" binding:"required"`
				PaymentRef string `json:"payment_ref,omitempty"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			err = apiEngine.ResolveStuckReservation(id, types.ReservationStatus(body.Target), body.PaymentRef)
			if err != nil {
				if errors.Is(err, engine.ErrTransitionLost) {
					ctx.JSON(http.StatusConflict, gin.H{"error": "reservation is not stuck"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"status": body.Target})
		})
	return g
}

func loadReservationWithOrg(id uuid.UUID) (*models.Reservation, *models.Organization, error) {
	conn := db.GetDb()
	var reservation models.Reservation
	err := conn.
		Preload("Event").
		Preload("Event.Organization").
		Where("id = ?", id).
		First(&reservation).Error
	if err != nil {
		return nil, nil, err
	}
	return &reservation, &reservation.Event.Organization, nil
}

func payErrorResponse(ctx *gin.Context, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, payment.ErrNoProvider):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrTransitionLost):
		ctx.JSON(http.StatusConflict, gin.H{"error": "reservation is not payable in its current state"})
	case errors.Is(err, engine.ErrEventStarted):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("Payment attempt for %s failed: %s\n", id, err.Error())
		ctx.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	}
}
