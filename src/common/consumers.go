package common

import (
	"errors"
	"log"
	"os"

	"rsv/src/engine"
	"rsv/src/lib"
	"rsv/src/lib/aws"
	"rsv/src/models"
	"rsv/src/types"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

// TransferQueue receives confirmations matched from incoming bank
// statements. One message per matched transfer.
const TransferQueue = "TransferConfirmations"

// StartTransferConsumer listens for transfer confirmations and settles
// the waiting reservations. Kafka locally, SQS everywhere else.
func StartTransferConsumer(e *engine.Engine, db *gorm.DB) {
	handler := types.Handler(func(payload string) {
		handleTransfer(e, db, payload)
	})
	if os.Getenv("API_ENV") == string(types.Local) {
		go lib.KafkaConsumer("rsv", lib.WithSuffix(TransferQueue), handler)
		return
	}
	consumer := aws.NewSQSConsumer(lib.WithSuffix(TransferQueue), handler)
	go consumer.Listen()
}

// StartMailConsumer drains the email queue and hands each message to the
// SMTP sender. Same transport split as the producer side.
func StartMailConsumer() {
	emailQueue := lib.WithSuffix(os.Getenv("EMAIL_QUEUE"))
	handler := types.Handler(handleMail)
	if os.Getenv("API_ENV") == string(types.Local) {
		go lib.KafkaConsumer("emails", emailQueue, handler)
		return
	}
	consumer := aws.NewSQSConsumer(emailQueue, handler)
	go consumer.Listen()
}

func handleMail(payload string) {
	input := lib.SendMailInput{
		From:     gjson.Get(payload, "from").String(),
		FromName: gjson.Get(payload, "from-name").String(),
		ReplyTo:  gjson.Get(payload, "reply-to").String(),
		Subject:  gjson.Get(payload, "subject").String(),
		Body:     gjson.Get(payload, "body").String(),
		Html:     gjson.Get(payload, "html").Bool(),
	}
	for _, to := range gjson.Get(payload, "to").Array() {
		input.To = append(input.To, to.String())
	}
	if len(input.To) == 0 {
		log.Printf("[Mailer] Dropping message without recipients: %s\n", payload)
		return
	}
	if err := lib.SendMail(&input); err != nil {
		log.Printf("[Mailer] Could not send mail to %v: %s\n", input.To, err.Error())
	}
}

// newTransferTransaction maps a matched bank statement line onto a
// transaction row. Sender name and account ride along for manual review.
func newTransferTransaction(id uuid.UUID, payload string, reservation *models.Reservation) models.Transaction {
	return models.Transaction{
		ReservationID: id,
		Currency:      reservation.Currency,
		Amount:        gjson.Get(payload, "amount").Float(),
		Provider:      "offline-transfer",
		SourceName:    gjson.Get(payload, "sender").String(),
		SourceValue:   gjson.Get(payload, "senderAccount").String(),
		ReferenceID:   gjson.Get(payload, "reference").String(),
		Status:        "received",
	}
}

func handleTransfer(e *engine.Engine, db *gorm.DB, payload string) {
	idField := gjson.Get(payload, "reservationId")
	if !idField.Exists() {
		log.Printf("[Transfers] Dropping message without reservationId: %s\n", payload)
		return
	}
	id, err := uuid.Parse(idField.String())
	if err != nil {
		log.Printf("[Transfers] Bad reservation id %q: %s\n", idField.String(), err.Error())
		return
	}
	amount := gjson.Get(payload, "amount").Float()
	reference := gjson.Get(payload, "reference").String()
	reservation, err := e.GetReservation(id)
	if err != nil {
		log.Printf("[Transfers] Could not load reservation %s: %s\n", id, err.Error())
		return
	}
	txn := newTransferTransaction(id, payload, reservation)
	if amount < reservation.Total {
		txn.Status = "underpaid"
		if err := db.Create(&txn).Error; err != nil {
			log.Printf("[Transfers] Could not record transaction for %s: %s\n", id, err.Error())
		}
		log.Printf("[Transfers] Reservation %s underpaid: got %.2f, expected %.2f. Left for manual review.\n", id, amount, reservation.Total)
		return
	}
	if err := e.ConfirmReservation(id, reference); err != nil {
		if errors.Is(err, engine.ErrTransitionLost) {
			log.Printf("[Transfers] Reservation %s already settled elsewhere, transfer %s needs manual review\n", id, reference)
		} else {
			log.Printf("[Transfers] Could not confirm reservation %s: %s\n", id, err.Error())
		}
		txn.Status = "unmatched"
		if err := db.Create(&txn).Error; err != nil {
			log.Printf("[Transfers] Could not record transaction for %s: %s\n", id, err.Error())
		}
		return
	}
	txn.Status = "settled"
	if err := db.Create(&txn).Error; err != nil {
		log.Printf("[Transfers] Could not record transaction for %s: %s\n", id, err.Error())
	}
}
