// Package events carries booking state changes from the services to
// whoever listens inside the process (logs, metrics).
package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	EventBookingCreated  = "booking_created"
	EventBookingApproved = "booking_approved"
	EventBookingRejected = "booking_rejected"
)

// BookingEventPayload is the booking as it was right after the change.
type BookingEventPayload struct {
	BookingID   int64     `json:"booking_id"`
	ItemID      int64     `json:"item_id"`
	ItemName    string    `json:"item_name"`
	BookerID    int64     `json:"booker_id"`
	OwnerID     int64     `json:"owner_id"`
	Status      string    `json:"status"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	ChangedByID int64     `json:"changed_by_id,omitempty"`
}

// Event is one published change. Seq grows by one per publish on a bus.
type Event struct {
	Seq       uint64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

type EventHandler func(event *Event) error

// EventBus delivers each event to its type's handlers in subscription
// order, on the publishing goroutine. A failing handler is reported to the
// OnError hook and does not stop the rest.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	onError  func(event *Event, err error)
	seq      atomic.Uint64
}

func NewEventBus() *EventBus {
	return &EventBus{handlers: map[string][]EventHandler{}}
}

// OnError sets the hook for handler failures.
func (b *EventBus) OnError(fn func(event *Event, err error)) {
	b.mu.Lock()
	b.onError = fn
	b.mu.Unlock()
}

// Subscribe adds handler for every listed event type.
func (b *EventBus) Subscribe(handler EventHandler, eventTypes ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range eventTypes {
		b.handlers[t] = append(b.handlers[t], handler)
	}
}

func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	targets := b.handlers[event.Type]
	onError := b.onError
	b.mu.RUnlock()

	event.Seq = b.seq.Add(1)
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	// slices are only appended to under the write lock, so targets is a stable view
	for _, h := range targets {
		err := h(event)
		if err != nil && onError != nil {
			onError(event, err)
		}
	}
}

// PublishJSON encodes payload and publishes it under eventType. A nil bus
// drops the event, so services can run without listeners.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	b.Publish(&Event{Type: eventType, Payload: raw})
	return nil
}

// DecodeBooking reads the payload of any booking_* event.
func DecodeBooking(event *Event) (BookingEventPayload, error) {
	var payload BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return BookingEventPayload{}, fmt.Errorf("decode %s payload: %w", event.Type, err)
	}
	return payload, nil
}
