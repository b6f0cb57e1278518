package common

import (
	"log"
	"time"

	"rsv/src/codes"
	"rsv/src/config"
	"rsv/src/engine"
	"rsv/src/lib"
)

// RegisterSweeps wires the recurring maintenance jobs onto the shared
// scheduler. Every sweep can be retuned or switched off through the
// config snapshot, the defaults match production.
func RegisterSweeps(e *engine.Engine, allocator *codes.Allocator, cfg config.Snapshot) error {
	if !cfg.ExpirySweepOff {
		_, err := lib.CreateCronJob("reservations:expiry", cfg.ExpirySweepEvery, func() {
			if _, err := e.CleanupExpiredReservations(time.Now().UTC()); err != nil {
				log.Printf("[Sweep] Expiry run failed: %s\n", err.Error())
			}
		})
		if err != nil {
			return err
		}
	}
	if !cfg.StuckSweepOff {
		_, err := lib.CreateCronJob("reservations:stuck", cfg.StuckSweepEvery, func() {
			if _, err := e.MarkStuckReservations(time.Now().UTC()); err != nil {
				log.Printf("[Sweep] Stuck-marking run failed: %s\n", err.Error())
			}
		})
		if err != nil {
			return err
		}
	}
	if !cfg.ReminderSweepOff {
		_, err := lib.CreateCronJob("reservations:reminders", cfg.ReminderSweepEvery, func() {
			if _, err := e.SendOfflinePaymentReminders(time.Now().UTC()); err != nil {
				log.Printf("[Sweep] Reminder run failed: %s\n", err.Error())
			}
		})
		if err != nil {
			return err
		}
	}
	if !cfg.CodeGenSweepOff {
		_, err := lib.CreateCronJob("codes:generate", cfg.CodeGenSweepEvery, func() {
			if _, err := allocator.Run(); err != nil {
				log.Printf("[Sweep] Code generation run failed: %s\n", err.Error())
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}
