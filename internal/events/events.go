// Package events provides in-process pub/sub for the signals that
// invalidate a day-view snapshot.
package events

import (
	"sync"
	"time"
)

// Event types the day view reacts to.
const (
	TypeAppointmentsChanged = "appointments_changed"
	TypeScheduleChanged     = "schedule_changed" // bumps the schedule revision
	TypeDateSelected        = "date_selected"
)

// Event is a lightweight domain event.
type Event struct {
	Type      string
	Date      time.Time // the affected calendar date, when applicable
	CreatedAt time.Time
}

// Handler reacts to an event.
type Handler func(event Event)

// Bus is an in-process publisher. Handlers run synchronously; the caller
// decides the concurrency model.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		handler(event)
	}
}
