package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"vagalivre/internal/db"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	counts := make(map[Type]int)
	for i := 0; i < 3; i++ {
		bus.Subscribe(func(e Event) {
			mu.Lock()
			defer mu.Unlock()
			counts[e.Type]++
		})
	}

	bus.Publish(Event{Type: ReservationCreated, Reservation: db.Reservation{ID: 1}})
	bus.Publish(Event{Type: ReservationApproved, Reservation: db.Reservation{ID: 1}})
	bus.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, counts[ReservationCreated], "every subscriber sees every event")
	assert.Equal(t, 3, counts[ReservationApproved])
}

func TestBusPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish(Event{Type: ReservationRefused})
	bus.Wait()
}

func TestBusSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewBus()

	release := make(chan struct{})
	done := make(chan struct{})
	bus.Subscribe(func(Event) {
		<-release
		close(done)
	})

	bus.Publish(Event{Type: ReservationCreated})
	// Publish returned while the subscriber is still parked.
	close(release)
	<-done
	bus.Wait()
}
