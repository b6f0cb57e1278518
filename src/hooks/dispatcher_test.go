package hooks

import (
	"errors"
	"sync"
	"testing"

	"rsv/src/types"

	"github.com/stretchr/testify/assert"
)

type captureTransport struct {
	mu   sync.Mutex
	got  []Message
	fail int
}

func (c *captureTransport) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail > 0 {
		c.fail--
		return errors.New("transport down")
	}
	c.got = append(c.got, msg)
	return nil
}

func (c *captureTransport) messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.got))
	copy(out, c.got)
	return out
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	ct := &captureTransport{}
	d := NewDispatcher(ct.send)
	d.Start()

	d.Enqueue(types.HOOK_RESERVATION_CONFIRMATION, "acme/gig", types.JSONB{"reservationId": "r1"})
	d.Enqueue(types.HOOK_TICKET_ASSIGNMENT, "acme/gig", types.JSONB{"reservationId": "r1"})
	d.Close()

	got := ct.messages()
	assert.Len(t, got, 2)
	assert.Equal(t, types.HOOK_RESERVATION_CONFIRMATION, got[0].Event)
	assert.Equal(t, types.HOOK_TICKET_ASSIGNMENT, got[1].Event)
	assert.Equal(t, "acme/gig", got[0].Scope)
}

func TestDispatcherRetriesFailedDelivery(t *testing.T) {
	ct := &captureTransport{fail: 1}
	d := NewDispatcher(ct.send)
	d.Start()

	d.Enqueue(types.HOOK_RESERVATIONS_EXPIRED, "acme/gig", types.JSONB{"reservationIds": []string{"r1"}})
	d.Close()

	got := ct.messages()
	assert.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Attempts)
}

func TestDispatcherFailuresNeverReachCaller(t *testing.T) {
	ct := &captureTransport{fail: maxAttempts}
	d := NewDispatcher(ct.send)
	d.Start()

	// All attempts fail and the message dead-letters; Enqueue and Close
	// still return normally.
	d.Enqueue(types.HOOK_TAX_ID_VALIDATION, "acme/gig", types.JSONB{"vatId": "PL123"})
	d.Close()

	assert.Empty(t, ct.messages())
}

func TestDispatcherEnqueueAfterCloseDrops(t *testing.T) {
	ct := &captureTransport{}
	d := NewDispatcher(ct.send)
	d.Start()
	d.Close()

	// Consumers can still settle reservations while the process shuts
	// down; a late message is dropped, not panicked on.
	assert.NotPanics(t, func() {
		d.Enqueue(types.HOOK_RESERVATION_CONFIRMATION, "acme/gig", types.JSONB{"reservationId": "r1"})
	})
	assert.Empty(t, ct.messages())
	assert.NotPanics(t, d.Close)
}

func TestDispatcherCloseWaitsForOverflowDeliveries(t *testing.T) {
	ct := &captureTransport{}
	d := NewDispatcher(ct.send)

	// With the worker not yet started the buffer fills up and the last
	// message spills onto its own goroutine.
	total := queueSize + 1
	for i := 0; i < total; i++ {
		d.Enqueue(types.HOOK_TICKET_ASSIGNMENT, "acme/gig", types.JSONB{"seq": i})
	}
	d.Start()
	d.Close()

	assert.Len(t, ct.messages(), total)
}

func TestScopePath(t *testing.T) {
	assert.Equal(t, "acme-corp/summer-fest-2026", ScopePath("Acme Corp", "Summer Fest 2026"))
	assert.Equal(t, "org/event", ScopePath("Org", "Event"))
}
