package engine

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"rsv/src/models"
	"rsv/src/types"
	"rsv/src/waitinglist"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateReservation holds inventory for a buyer and opens a pending
// reservation. The ticket row is locked for the duration of the
// transaction so the free count cannot be raced below zero.
func (e *Engine) CreateReservation(body types.CreateReservationRequestBody) (*models.Reservation, error) {
	if body.Qty == 0 {
		return nil, errors.New("qty must be positive")
	}
	var reservation models.Reservation
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", body.TicketID).First(&ticket).Error; err != nil {
			return err
		}
		if ticket.Status != types.TICKET_OPEN {
			return fmt.Errorf("ticket %d is not open for reservations", ticket.ID)
		}
		var held int64
		if err := tx.Model(&models.InventoryItem{}).Where("ticket_id = ?", ticket.ID).Count(&held).Error; err != nil {
			return err
		}
		if int64(ticket.Limit)-held < int64(body.Qty) {
			return ErrNoFreeInventory
		}
		validUntil := time.Now().UTC().Add(e.cfg.PendingTTL)
		reservation = models.Reservation{
			EventID:        ticket.EventID,
			TicketID:       ticket.ID,
			Qty:            body.Qty,
			Status:         types.RESERVATION_PENDING,
			BuyerName:      body.BuyerName,
			BuyerEmail:     body.BuyerEmail,
			BillingAddress: body.Address,
			Locale:         body.Locale,
			WantsInvoice:   body.WantsInvoice,
			VATID:          body.VATID,
			Total:          ticket.Price * float64(body.Qty),
			Currency:       ticket.Currency,
			ValidUntil:     &validUntil,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}
		items := make([]models.InventoryItem, 0, body.Qty)
		for i := uint8(0); i < body.Qty; i++ {
			items = append(items, models.InventoryItem{TicketID: ticket.ID, ReservationID: reservation.ID})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		if body.FromWaiting {
			entry, err := waitinglist.FirstWaiting(tx, ticket.EventID)
			if err != nil {
				return err
			}
			if entry == nil || !strings.EqualFold(entry.Email, body.BuyerEmail) {
				return waitinglist.ErrNotFirstInLine
			}
			if err := waitinglist.Acquire(tx, entry.ID, reservation.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if e.hooks != nil && body.VATID != "" {
		e.hooks.Enqueue(types.HOOK_TAX_ID_VALIDATION, e.scopeFor(reservation.EventID), map[string]any{
			"reservationId": reservation.ID.String(),
			"vatId":         body.VATID,
		})
	}
	return &reservation, nil
}

// BeginPayment moves a pending reservation into the gateway flow. Lost
// races surface as ErrTransitionLost, never as a silent overwrite.
func (e *Engine) BeginPayment(id uuid.UUID, method types.PaymentMethod) error {
	res := e.db.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, types.RESERVATION_PENDING).
		Updates(map[string]any{
			"status":         types.RESERVATION_IN_PAYMENT,
			"payment_method": method,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTransitionLost
	}
	if res.RowsAffected != 1 {
		return &InvariantViolation{Op: "BeginPayment", ID: id.String(), Affected: res.RowsAffected}
	}
	return nil
}

// RevertToPending walks an in-flight payment back after the gateway
// rejected it, so the buyer can retry while the hold is still live.
func (e *Engine) RevertToPending(id uuid.UUID) error {
	res := e.db.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, types.RESERVATION_IN_PAYMENT).
		Updates(map[string]any{
			"status":         types.RESERVATION_PENDING,
			"payment_method": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTransitionLost
	}
	if res.RowsAffected != 1 {
		return &InvariantViolation{Op: "RevertToPending", ID: id.String(), Affected: res.RowsAffected}
	}
	return nil
}

// TransitionToOfflinePayment grants the buyer a bank-transfer window.
// The deadline is computed against the event's own calendar, then the
// status flips pending -> offline_payment in one guarded update.
func (e *Engine) TransitionToOfflinePayment(id uuid.UUID) (*time.Time, error) {
	var reservation models.Reservation
	if err := e.db.Preload("Event").Where("id = ?", id).First(&reservation).Error; err != nil {
		return nil, err
	}
	tz := reservation.Event.TZ()
	now := time.Now().In(tz)
	deadline, sameDay, err := OfflinePaymentDeadline(reservation.Event.DateTime.In(tz), now, e.cfg.OfflineWaitingDays)
	if err != nil {
		return nil, err
	}
	if sameDay {
		log.Printf("[Engine] Reservation %s chose offline payment on event day, deadline %s\n", id, deadline.Format(time.RFC3339))
	}
	method := types.PAYMENT_METHOD_TRANSFER
	res := e.db.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, types.RESERVATION_PENDING).
		Updates(map[string]any{
			"status":         types.RESERVATION_OFFLINE_PAYMENT,
			"payment_method": method,
			"valid_until":    deadline,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrTransitionLost
	}
	if res.RowsAffected != 1 {
		return nil, &InvariantViolation{Op: "TransitionToOfflinePayment", ID: id.String(), Affected: res.RowsAffected}
	}
	return &deadline, nil
}

// ConfirmReservation finishes a purchase. Accepted from in_payment,
// offline_payment and stuck; the payment reference is recorded with the
// status flip so a confirmed row always carries its proof of payment.
func (e *Engine) ConfirmReservation(id uuid.UUID, paymentRef string) error {
	from := []types.ReservationStatus{
		types.RESERVATION_IN_PAYMENT,
		types.RESERVATION_OFFLINE_PAYMENT,
		types.RESERVATION_STUCK,
	}
	res := e.db.Model(&models.Reservation{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{
			"status":      types.RESERVATION_CONFIRMED,
			"payment_ref": paymentRef,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTransitionLost
	}
	if res.RowsAffected != 1 {
		return &InvariantViolation{Op: "ConfirmReservation", ID: id.String(), Affected: res.RowsAffected}
	}
	if e.hooks != nil {
		var reservation models.Reservation
		if err := e.db.Where("id = ?", id).First(&reservation).Error; err != nil {
			log.Printf("[Engine] Confirmed %s but could not reload it for hooks: %s\n", id, err.Error())
			return nil
		}
		scope := e.scopeFor(reservation.EventID)
		e.hooks.Enqueue(types.HOOK_RESERVATION_CONFIRMATION, scope, map[string]any{
			"reservationId": id.String(),
			"email":         reservation.BuyerEmail,
			"locale":        reservation.Locale,
		})
		e.hooks.Enqueue(types.HOOK_TICKET_ASSIGNMENT, scope, map[string]any{
			"reservationId": id.String(),
			"ticketId":      reservation.TicketID,
			"qty":           reservation.Qty,
		})
		if reservation.WantsInvoice {
			e.hooks.Enqueue(types.HOOK_INVOICE_GENERATION, scope, map[string]any{
				"reservationId": id.String(),
				"total":         reservation.Total,
				"currency":      reservation.Currency,
			})
		}
	}
	return nil
}

// CancelReservation ends a reservation on buyer or organizer request.
// Inventory is released and any waiting-queue spot the buyer held is
// opened up again, all inside the same transaction.
func (e *Engine) CancelReservation(id uuid.UUID) error {
	var reservation models.Reservation
	if err := e.db.Where("id = ?", id).First(&reservation).Error; err != nil {
		return err
	}
	if reservation.Status.Terminal() {
		return fmt.Errorf("reservation %s is already %s", id, reservation.Status)
	}
	cancellable := []types.ReservationStatus{
		types.RESERVATION_PENDING,
		types.RESERVATION_IN_PAYMENT,
		types.RESERVATION_OFFLINE_PAYMENT,
		types.RESERVATION_STUCK,
	}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Reservation{}).
			Where("id = ? AND status IN ?", id, cancellable).
			Update("status", types.RESERVATION_CANCELED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTransitionLost
		}
		if res.RowsAffected != 1 {
			return &InvariantViolation{Op: "CancelReservation", ID: id.String(), Affected: res.RowsAffected}
		}
		if err := tx.Where("reservation_id = ?", id).Delete(&models.InventoryItem{}).Error; err != nil {
			return err
		}
		_, err := waitinglist.ExpireByReservationIDs(tx, []uuid.UUID{id})
		return err
	})
	if err != nil {
		return err
	}
	if e.hooks != nil {
		e.hooks.Enqueue(types.HOOK_RESERVATIONS_CANCELED, e.scopeFor(reservation.EventID), map[string]any{
			"reservationIds": []string{id.String()},
		})
	}
	return nil
}

// ResolveStuckReservation is the manual escape hatch for payments that
// died mid-flight. An operator decides, after checking the gateway,
// whether the money actually moved.
func (e *Engine) ResolveStuckReservation(id uuid.UUID, target types.ReservationStatus, paymentRef string) error {
	switch target {
	case types.RESERVATION_CONFIRMED:
		if paymentRef == "" {
			return errors.New("confirming a stuck reservation requires a payment reference")
		}
	case types.RESERVATION_CANCELED:
	default:
		return fmt.Errorf("stuck reservations resolve to confirmed or canceled, not %s", target)
	}
	if target == types.RESERVATION_CANCELED {
		err := e.db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Reservation{}).
				Where("id = ? AND status = ?", id, types.RESERVATION_STUCK).
				Update("status", types.RESERVATION_CANCELED)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrTransitionLost
			}
			if res.RowsAffected != 1 {
				return &InvariantViolation{Op: "ResolveStuckReservation", ID: id.String(), Affected: res.RowsAffected}
			}
			if err := tx.Where("reservation_id = ?", id).Delete(&models.InventoryItem{}).Error; err != nil {
				return err
			}
			_, err := waitinglist.ExpireByReservationIDs(tx, []uuid.UUID{id})
			return err
		})
		return err
	}
	res := e.db.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, types.RESERVATION_STUCK).
		Updates(map[string]any{
			"status":      types.RESERVATION_CONFIRMED,
			"payment_ref": paymentRef,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTransitionLost
	}
	if res.RowsAffected != 1 {
		return &InvariantViolation{Op: "ResolveStuckReservation", ID: id.String(), Affected: res.RowsAffected}
	}
	if e.hooks == nil {
		return nil
	}
	var reservation models.Reservation
	if err := e.db.Where("id = ?", id).First(&reservation).Error; err == nil {
		scope := e.scopeFor(reservation.EventID)
		e.hooks.Enqueue(types.HOOK_RESERVATION_CONFIRMATION, scope, map[string]any{
			"reservationId": id.String(),
			"email":         reservation.BuyerEmail,
			"locale":        reservation.Locale,
		})
		e.hooks.Enqueue(types.HOOK_TICKET_ASSIGNMENT, scope, map[string]any{
			"reservationId": id.String(),
			"ticketId":      reservation.TicketID,
			"qty":           reservation.Qty,
		})
	}
	return nil
}

// GetReservation loads a reservation with its event and items.
func (e *Engine) GetReservation(id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := e.db.Preload("Event").Preload("Ticket").Preload("Items").Where("id = ?", id).First(&reservation).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}
