package events

import (
	"sync"

	"vagalivre/internal/db"
)

type Type string

const (
	ReservationCreated  Type = "reservation.created"
	ReservationApproved Type = "reservation.approved"
	ReservationRefused  Type = "reservation.refused"
)

// Event carries a reservation state transition to external
// collaborators (chat, notifications). OwnerID is the spot owner's id,
// resolved at emission time so subscribers need no spot lookup.
type Event struct {
	Type        Type
	Reservation db.Reservation
	OwnerID     int64
}

type Handler func(Event)

// Bus is an in-process publish/subscribe fan-out. Publishing never
// blocks the caller and never reports delivery errors back: state
// transitions are authoritative regardless of what subscribers do.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	wg       sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			h(e)
		}(h)
	}
}

// Wait blocks until in-flight deliveries finish. Used on shutdown and
// in tests.
func (b *Bus) Wait() {
	b.wg.Wait()
}
