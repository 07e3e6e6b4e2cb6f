package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vagalivre/internal/db"
	"vagalivre/internal/events"
	"vagalivre/internal/repository"
)

func TestExpirePendingReservations(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	bus := events.NewBus()

	var mu sync.Mutex
	var published []events.Event
	bus.Subscribe(func(e events.Event) {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, e)
	})

	owner := &db.User{Email: "owner@example.com", FullName: "Owner"}
	require.NoError(t, store.Users().Create(ctx, owner))
	spot := &db.Spot{OwnerID: owner.ID, Title: "Lot", HourlyRateCents: 500, Capacity: 2}
	require.NoError(t, store.Spots().Create(ctx, spot))

	now := time.Date(2025, 7, 23, 12, 0, 0, 0, time.UTC)

	stale := &db.Reservation{Code: "stale", SpotID: spot.ID, SlotNumber: 1, RenterID: 42,
		StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Hour), Status: db.StatusPending}
	require.NoError(t, store.Create(ctx, stale))

	upcoming := &db.Reservation{Code: "upcoming", SpotID: spot.ID, SlotNumber: 1, RenterID: 42,
		StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour), Status: db.StatusPending}
	require.NoError(t, store.Create(ctx, upcoming))

	started := &db.Reservation{Code: "started", SpotID: spot.ID, SlotNumber: 2, RenterID: 42,
		StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour), Status: db.StatusConfirmed}
	require.NoError(t, store.Create(ctx, started))

	svc := NewJobService(store, store.Spots(), bus, zerolog.Nop())
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.ExpirePendingReservations(ctx))
	bus.Wait()

	got, err := store.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusRefused, got.Status, "stale pending is refused, not deleted")

	got, err = store.GetByID(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, got.Status, "future pendings are untouched")

	got, err = store.GetByID(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusConfirmed, got.Status, "confirmed reservations are untouched")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, published, 1)
	assert.Equal(t, events.ReservationRefused, published[0].Type)
	assert.Equal(t, stale.ID, published[0].Reservation.ID)
	assert.Equal(t, owner.ID, published[0].OwnerID)
}

func TestExpirePendingReservationsNothingToDo(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	bus := events.NewBus()

	svc := NewJobService(store, store.Spots(), bus, zerolog.Nop())
	assert.NoError(t, svc.ExpirePendingReservations(ctx))
}
