package hooks

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"rsv/src/lib"
	"rsv/src/types"
	"sync"
	"time"

	"github.com/gosimple/slug"
)

// Message is one outbound extension notification. Scope is the
// organization/event path the event happened under.
type Message struct {
	Event    types.HookEvent `json:"event"`
	Scope    string          `json:"scope"`
	Payload  types.JSONB     `json:"payload"`
	Attempts int             `json:"-"`
}

// Topic is the stream hook messages are published on.
const (
	Topic         = "ExtensionHooks"
	deadLetterKey = "hooks:deadletter"
	maxAttempts   = 3
	queueSize     = 256
)

type TransportFunc func(msg Message) error

// DefaultTransport publishes to Kafka locally and SNS everywhere else,
// following the same environment split the mailer uses.
func DefaultTransport(msg Message) error {
	if types.Env(os.Getenv("API_ENV")) == types.Local {
		return lib.KafkaProduceMessage("hooks", lib.WithSuffix(Topic), types.JSONB{
			"event":   string(msg.Event),
			"scope":   msg.Scope,
			"payload": msg.Payload,
		})
	}
	body, err := json.Marshal(&msg)
	if err != nil {
		return err
	}
	return lib.SNSProduceMessage(lib.WithSuffix(Topic), string(body))
}

// Dispatcher delivers lifecycle notifications after the triggering transition
// has committed. Delivery is at-least-once and never reported back to the
// caller: a failed dispatch is retried, then dead-lettered, never rolled into
// the transition.
type Dispatcher struct {
	queue     chan Message
	transport TransportFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	closed    bool
}

func NewDispatcher(transport TransportFunc) *Dispatcher {
	if transport == nil {
		transport = DefaultTransport
	}
	d := &Dispatcher{
		queue:     make(chan Message, queueSize),
		transport: transport,
	}
	return d
}

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for msg := range d.queue {
			d.deliver(msg)
		}
	}()
}

// Enqueue never blocks the caller's transition path. When the queue is full
// the message is delivered on its own goroutine instead. A message arriving
// after Close, from a consumer still settling reservations during shutdown,
// is dropped with a log line rather than lost in a panic.
func (d *Dispatcher) Enqueue(event types.HookEvent, scope string, payload types.JSONB) {
	msg := Message{Event: event, Scope: scope, Payload: payload}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		log.Printf("[Hooks] Dispatcher closed, dropping %s for scope %s\n", msg.Event, msg.Scope)
		return
	}
	select {
	case d.queue <- msg:
		d.mu.Unlock()
	default:
		d.wg.Add(1)
		d.mu.Unlock()
		go func() {
			defer d.wg.Done()
			d.deliver(msg)
		}()
	}
}

// Close drains the queue, waits for overflow deliveries still in flight and
// stops the worker. Safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) deliver(msg Message) {
	for msg.Attempts = 1; msg.Attempts <= maxAttempts; msg.Attempts++ {
		err := d.transport(msg)
		if err == nil {
			return
		}
		log.Printf("[Hooks] Delivery attempt %d/%d for %s failed: %s\n", msg.Attempts, maxAttempts, msg.Event, err.Error())
		if msg.Attempts < maxAttempts {
			time.Sleep(time.Duration(msg.Attempts) * time.Second)
		}
	}
	d.deadLetter(msg)
}

func (d *Dispatcher) deadLetter(msg Message) {
	body, err := json.Marshal(&msg)
	if err != nil {
		log.Printf("[Hooks] Could not serialize dead letter for %s: %s\n", msg.Event, err.Error())
		return
	}
	rdb := lib.GetRedisClient()
	if rdb == nil {
		log.Printf("[Hooks] No redis client, dropping dead letter for %s: %s\n", msg.Event, string(body))
		return
	}
	if err := rdb.RPush(context.Background(), deadLetterKey, string(body)).Err(); err != nil {
		log.Printf("[Hooks] Failed to push dead letter for %s: %s\n", msg.Event, err.Error())
		return
	}
	log.Printf("[Hooks] Dead-lettered %s for scope %s\n", msg.Event, msg.Scope)
}

// ScopePath builds the organization/event path carried on every message.
func ScopePath(orgName, eventName string) string {
	return slug.Make(orgName) + "/" + slug.Make(eventName)
}
