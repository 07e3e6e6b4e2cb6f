package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"vagalivre/internal/auth"
	"vagalivre/internal/db"
	"vagalivre/internal/entities"
	"vagalivre/internal/service"
)

type BookingHandler struct {
	Service *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

func (h *BookingHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	renterID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req entities.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	res, err := h.Service.CreateReservation(r.Context(), renterID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entities.NewReservationResponse(res))
}

func (h *BookingHandler) ListMyReservations(w http.ResponseWriter, r *http.Request) {
	renterID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	reservations, err := h.Service.ListRenterReservations(r.Context(), renterID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]entities.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		out = append(out, entities.NewReservationResponse(&reservations[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *BookingHandler) GetReservationByCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	res, err := h.Service.GetReservationByCode(r.Context(), userID, mux.Vars(r)["code"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewReservationResponse(res))
}

func (h *BookingHandler) ApproveReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.ApproveReservation)
}

func (h *BookingHandler) RefuseReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.RefuseReservation)
}

func (h *BookingHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	renterID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := reservationID(r)
	if err != nil {
		http.Error(w, "Invalid reservation id", http.StatusBadRequest)
		return
	}

	if err := h.Service.CancelReservation(r.Context(), renterID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reservation cancelled"})
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, ownerID, id int64) (*db.Reservation, error)) {
	ownerID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := reservationID(r)
	if err != nil {
		http.Error(w, "Invalid reservation id", http.StatusBadRequest)
		return
	}

	res, err := op(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewReservationResponse(res))
}

func reservationID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
