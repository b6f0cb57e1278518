package common

import (
	"testing"

	"rsv/src/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewTransferTransaction(t *testing.T) {
	id := uuid.New()
	reservation := &models.Reservation{Currency: "PLN", Total: 120}
	payload := `{
		"reservationId": "` + id.String() + `",
		"amount": 120,
		"reference": "TR-2026-0042",
		"sender": "Jan Kowalski",
		"senderAccount": "PL61109010140000071219812874"
	}`

	txn := newTransferTransaction(id, payload, reservation)

	assert.Equal(t, id, txn.ReservationID)
	assert.Equal(t, "PLN", txn.Currency)
	assert.Equal(t, 120.0, txn.Amount)
	assert.Equal(t, "offline-transfer", txn.Provider)
	assert.Equal(t, "Jan Kowalski", txn.SourceName)
	assert.Equal(t, "PL61109010140000071219812874", txn.SourceValue)
	assert.Equal(t, "TR-2026-0042", txn.ReferenceID)
	assert.Equal(t, "received", txn.Status)
}

func TestNewTransferTransactionMissingSender(t *testing.T) {
	id := uuid.New()
	reservation := &models.Reservation{Currency: "EUR"}
	txn := newTransferTransaction(id, `{"amount": 50, "reference": "TR-1"}`, reservation)

	assert.Empty(t, txn.SourceName)
	assert.Empty(t, txn.SourceValue)
	assert.Equal(t, 50.0, txn.Amount)
}
