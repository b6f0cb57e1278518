package engine

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"rsv/src/lib"
	"rsv/src/models"
	"rsv/src/types"
	"rsv/src/waitinglist"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CleanupExpiredReservations reaps every non-terminal hold whose
// deadline passed before cutoff. Pending holds end up canceled, offline
// waits end up expired. Each reservation is reaped in its own guarded
// transaction so one bad row never stalls the batch, and a reservation
// the buyer pays for mid-sweep is simply skipped.
func (e *Engine) CleanupExpiredReservations(cutoff time.Time) (int, error) {
	sweepable := []types.ReservationStatus{
		types.RESERVATION_PENDING,
		types.RESERVATION_OFFLINE_PAYMENT,
	}
	var candidates []models.Reservation
	err := e.db.
		Where("status IN ? AND valid_until IS NOT NULL AND valid_until < ?", sweepable, cutoff).
		Find(&candidates).Error
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, nil
	}
	reaped := 0
	expiredByEvent := map[uint][]string{}
	canceledByEvent := map[uint][]string{}
	for _, r := range candidates {
		target := reapTarget(r.Status)
		if err := e.reapReservation(r, target); err != nil {
			if errors.Is(err, ErrTransitionLost) {
				continue
			}
			log.Printf("[Engine] Could not reap reservation %s: %s\n", r.ID, err.Error())
			continue
		}
		reaped++
		if target == types.RESERVATION_EXPIRED {
			expiredByEvent[r.EventID] = append(expiredByEvent[r.EventID], r.ID.String())
		} else {
			canceledByEvent[r.EventID] = append(canceledByEvent[r.EventID], r.ID.String())
		}
	}
	if e.hooks != nil {
		for eventID, ids := range expiredByEvent {
			e.hooks.Enqueue(types.HOOK_RESERVATIONS_EXPIRED, e.scopeFor(eventID), map[string]any{
				"reservationIds": ids,
			})
		}
		for eventID, ids := range canceledByEvent {
			e.hooks.Enqueue(types.HOOK_RESERVATIONS_CANCELED, e.scopeFor(eventID), map[string]any{
				"reservationIds": ids,
			})
		}
	}
	if reaped > 0 {
		log.Printf("[Engine] Swept %d reservations past their deadline\n", reaped)
	}
	return reaped, nil
}

// reapTarget maps a sweepable status to its terminal state. A pending
// hold was never committed to, so it cancels; an offline wait was a
// promise the buyer broke, so it expires.
func reapTarget(status types.ReservationStatus) types.ReservationStatus {
	if status == types.RESERVATION_OFFLINE_PAYMENT {
		return types.RESERVATION_EXPIRED
	}
	return types.RESERVATION_CANCELED
}

func (e *Engine) reapReservation(r models.Reservation, target types.ReservationStatus) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Reservation{}).
			Where("id = ? AND status = ?", r.ID, r.Status).
			Update("status", target)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTransitionLost
		}
		if res.RowsAffected != 1 {
			return &InvariantViolation{Op: "CleanupExpiredReservations", ID: r.ID.String(), Affected: res.RowsAffected}
		}
		if err := tx.Where("reservation_id = ?", r.ID).Delete(&models.InventoryItem{}).Error; err != nil {
			return err
		}
		_, err := waitinglist.ExpireByReservationIDs(tx, []uuid.UUID{r.ID})
		return err
	})
}

// MarkStuckReservations flags in_payment rows whose deadline passed
// before cutoff. These were in the gateway when something died, so they
// are parked for an operator instead of being reaped automatically.
func (e *Engine) MarkStuckReservations(cutoff time.Time) (int64, error) {
	res := e.db.Model(&models.Reservation{}).
		Where("status = ? AND valid_until IS NOT NULL AND valid_until < ?", types.RESERVATION_IN_PAYMENT, cutoff).
		Update("status", types.RESERVATION_STUCK)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[Engine] Parked %d in-flight payments as stuck, waiting on manual review\n", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

// SendOfflinePaymentReminders mails buyers whose transfer deadline is
// inside the reminder window. The reminder marker is claimed with a
// guarded update before the mail goes out, so overlapping runs send at
// most one reminder per reservation.
func (e *Engine) SendOfflinePaymentReminders(now time.Time) (int, error) {
	horizon := now.Add(e.cfg.ReminderWindow)
	var candidates []models.Reservation
	err := e.db.
		Where("status = ? AND valid_until IS NOT NULL AND valid_until <= ? AND last_reminder_at IS NULL",
			types.RESERVATION_OFFLINE_PAYMENT, horizon).
		Find(&candidates).Error
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, r := range candidates {
		res := e.db.Model(&models.Reservation{}).
			Where("id = ? AND status = ? AND last_reminder_at IS NULL", r.ID, types.RESERVATION_OFFLINE_PAYMENT).
			Update("last_reminder_at", now)
		if res.Error != nil {
			log.Printf("[Engine] Could not claim reminder for %s: %s\n", r.ID, res.Error.Error())
			continue
		}
		if res.RowsAffected == 0 {
			continue
		}
		deadline := now
		if r.ValidUntil != nil {
			deadline = *r.ValidUntil
		}
		input := &lib.SendMailInput{
			From:     os.Getenv("MAIL_FROM"),
			FromName: os.Getenv("MAIL_FROM_NAME"),
			To:       []string{r.BuyerEmail},
			Subject:  "Your bank transfer is due soon",
			Body: fmt.Sprintf(
				"Hi %s,\n\nWe are still waiting for your transfer of %.2f %s for reservation %s. Please make sure it arrives before %s or the reservation will expire.\n",
				r.BuyerName, r.Total, r.Currency, r.ID, deadline.Format(time.RFC1123)),
		}
		if err := e.mail(input); err != nil {
			log.Printf("[Engine] Reminder for %s could not be queued: %s\n", r.ID, err.Error())
			continue
		}
		sent++
	}
	if sent > 0 {
		log.Printf("[Engine] Queued %d offline payment reminders\n", sent)
	}
	return sent, nil
}
