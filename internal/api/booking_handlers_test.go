package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vagalivre/internal/auth"
	"vagalivre/internal/db"
	"vagalivre/internal/entities"
	"vagalivre/internal/events"
	"vagalivre/internal/repository"
	"vagalivre/internal/service"
)

// stubParser accepts tokens of the form "user-<id>".
type stubParser struct{}

func (stubParser) ParseToken(token string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(token, "user-%d", &id); err != nil {
		return 0, err
	}
	return id, nil
}

type apiFixture struct {
	router  *mux.Router
	store   *repository.MemoryStore
	ownerID int64
	renter  int64
	spot    *db.Spot
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMemoryStore()
	bus := events.NewBus()
	log := zerolog.Nop()

	owner := &db.User{Email: "owner@example.com", FullName: "Owner"}
	require.NoError(t, store.Users().Create(ctx, owner))
	renter := &db.User{Email: "renter@example.com", FullName: "Renter"}
	require.NoError(t, store.Users().Create(ctx, renter))
	spot := &db.Spot{OwnerID: owner.ID, Title: "Garage", HourlyRateCents: 1000, Capacity: 2}
	require.NoError(t, store.Spots().Create(ctx, spot))

	spotSvc := service.NewSpotService(store.Spots(), log)
	availabilitySvc := service.NewAvailabilityService(store.Spots(), store, store, log)
	bookingSvc := service.NewBookingService(store, store.Spots(), bus, log)

	spotHandler := NewSpotHandler(spotSvc, availabilitySvc)
	bookingHandler := NewBookingHandler(bookingSvc)

	r := mux.NewRouter()
	r.HandleFunc("/api/spots", spotHandler.ListSpots).Methods("GET")
	r.HandleFunc("/api/spots/{id}", spotHandler.GetSpot).Methods("GET")
	r.HandleFunc("/api/spots/{id}/availability", spotHandler.GetAvailability).Methods("GET")

	private := r.PathPrefix("/api").Subrouter()
	private.Use(auth.Middleware(stubParser{}))
	private.HandleFunc("/spots", spotHandler.CreateSpot).Methods("POST")
	private.HandleFunc("/spots/{id}/availability", spotHandler.ReplaceAvailability).Methods("PUT")
	private.HandleFunc("/reservations", bookingHandler.CreateReservation).Methods("POST")
	private.HandleFunc("/reservations", bookingHandler.ListMyReservations).Methods("GET")
	private.HandleFunc("/reservations/code/{code}", bookingHandler.GetReservationByCode).Methods("GET")
	private.HandleFunc("/reservations/{id}/approve", bookingHandler.ApproveReservation).Methods("POST")
	private.HandleFunc("/reservations/{id}/refuse", bookingHandler.RefuseReservation).Methods("POST")
	private.HandleFunc("/reservations/{id}", bookingHandler.CancelReservation).Methods("DELETE")

	return &apiFixture{router: r, store: store, ownerID: owner.ID, renter: renter.ID, spot: spot}
}

func (f *apiFixture) do(t *testing.T, method, path string, userID int64, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer user-"+strconv.FormatInt(userID, 10))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func futureISO(h int) string {
	return time.Now().UTC().Add(time.Duration(h) * time.Hour).Truncate(time.Hour).Format(time.RFC3339)
}

func TestReservationLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	body := entities.BookingRequest{SpotID: f.spot.ID, SlotNumber: 1, StartTime: futureISO(2), EndTime: futureISO(4)}
	w := f.do(t, "POST", "/api/reservations", f.renter, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created entities.ReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, db.StatusPending, created.Status)
	assert.Equal(t, int64(2000), created.TotalPriceCents)

	path := fmt.Sprintf("/api/reservations/%d/approve", created.ID)
	w = f.do(t, "POST", path, f.ownerID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var approved entities.ReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &approved))
	assert.Equal(t, db.StatusConfirmed, approved.Status)

	w = f.do(t, "GET", "/api/reservations", f.renter, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []entities.ReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, db.StatusConfirmed, list[0].Status)

	w = f.do(t, "GET", "/api/reservations/code/"+created.Code, f.renter, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var byCode entities.ReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &byCode))
	assert.Equal(t, created.ID, byCode.ID)

	w = f.do(t, "DELETE", fmt.Sprintf("/api/reservations/%d", created.ID), f.renter, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestReservationErrorStatusCodes(t *testing.T) {
	f := newAPIFixture(t)

	body := entities.BookingRequest{SpotID: f.spot.ID, SlotNumber: 1, StartTime: futureISO(2), EndTime: futureISO(4)}
	w := f.do(t, "POST", "/api/reservations", f.renter, body)
	require.Equal(t, http.StatusCreated, w.Code)

	var created entities.ReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Overlap maps to 409.
	w = f.do(t, "POST", "/api/reservations", f.renter, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Owner booking their own spot maps to 403.
	w = f.do(t, "POST", "/api/reservations", f.ownerID,
		entities.BookingRequest{SpotID: f.spot.ID, SlotNumber: 2, StartTime: futureISO(2), EndTime: futureISO(4)})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Bad interval maps to 400.
	w = f.do(t, "POST", "/api/reservations", f.renter,
		entities.BookingRequest{SpotID: f.spot.ID, SlotNumber: 2, StartTime: futureISO(4), EndTime: futureISO(2)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown reservation maps to 404.
	w = f.do(t, "POST", "/api/reservations/9999/approve", f.ownerID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Approving as the renter maps to 403 and refusing twice to 400.
	w = f.do(t, "POST", fmt.Sprintf("/api/reservations/%d/approve", created.ID), f.renter, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = f.do(t, "POST", fmt.Sprintf("/api/reservations/%d/refuse", created.ID), f.ownerID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, "POST", fmt.Sprintf("/api/reservations/%d/refuse", created.ID), f.ownerID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationEndpointsRequireAuth(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, "POST", "/api/reservations", 0, entities.BookingRequest{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, "GET", "/api/reservations", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	windows := map[string]interface{}{"windows": []entities.AvailabilityWindowRequest{
		{Date: "2025-12-24", StartTime: "08:00", EndTime: "20:00", Quantity: 2},
	}}
	w := f.do(t, "PUT", fmt.Sprintf("/api/spots/%d/availability", f.spot.ID), f.ownerID, windows)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, "GET", fmt.Sprintf("/api/spots/%d/availability?dates=2025-12-24,2025-12-25", f.spot.ID), 0, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp entities.AvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Dates, 2)
	assert.Len(t, resp.Dates[0].Slots, 2)
	assert.Empty(t, resp.Dates[1].Slots, "no windows declared for the second date")

	// Edits from a non-owner map to 403.
	w = f.do(t, "PUT", fmt.Sprintf("/api/spots/%d/availability", f.spot.ID), f.renter, windows)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, "GET", fmt.Sprintf("/api/spots/%d/availability", f.spot.ID), 0, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "dates parameter is required")
}

func TestSpotEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, "POST", "/api/spots", f.ownerID,
		entities.SpotRequest{Title: "Second garage", HourlyRateCents: 500, Capacity: 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created entities.SpotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, f.ownerID, created.OwnerID)

	w = f.do(t, "GET", "/api/spots", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []entities.SpotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	w = f.do(t, "GET", fmt.Sprintf("/api/spots/%d", created.ID), 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, "GET", "/api/spots/9999", 0, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, "POST", "/api/spots", f.ownerID, entities.SpotRequest{Title: "", HourlyRateCents: 500, Capacity: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
