package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"vagalivre/internal/auth"
	"vagalivre/internal/entities"
	"vagalivre/internal/service"
)

type SpotHandler struct {
	Spots        *service.SpotService
	Availability *service.AvailabilityService
}

func NewSpotHandler(spots *service.SpotService, availability *service.AvailabilityService) *SpotHandler {
	return &SpotHandler{Spots: spots, Availability: availability}
}

func (h *SpotHandler) CreateSpot(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req entities.SpotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	spot, err := h.Spots.CreateSpot(r.Context(), ownerID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entities.NewSpotResponse(spot))
}

func (h *SpotHandler) ListSpots(w http.ResponseWriter, r *http.Request) {
	spots, err := h.Spots.ListSpots(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]entities.SpotResponse, 0, len(spots))
	for i := range spots {
		out = append(out, entities.NewSpotResponse(&spots[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SpotHandler) GetSpot(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		http.Error(w, "Invalid spot id", http.StatusBadRequest)
		return
	}
	spot, err := h.Spots.GetSpot(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewSpotResponse(spot))
}

// GetAvailability answers the per-slot occupancy read model for the
// dates in the comma-separated "dates" query parameter.
func (h *SpotHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		http.Error(w, "Invalid spot id", http.StatusBadRequest)
		return
	}

	datesParam := r.URL.Query().Get("dates")
	if datesParam == "" {
		http.Error(w, "Missing dates parameter", http.StatusBadRequest)
		return
	}
	dates := strings.Split(datesParam, ",")

	resp, err := h.Availability.GetAvailability(r.Context(), id, dates)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ReplaceAvailability applies the owner's replace-all availability edit.
func (h *SpotHandler) ReplaceAvailability(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := spotID(r)
	if err != nil {
		http.Error(w, "Invalid spot id", http.StatusBadRequest)
		return
	}

	var req struct {
		Windows []entities.AvailabilityWindowRequest `json:"windows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	windows, err := h.Availability.ReplaceWindows(r.Context(), ownerID, id, req.Windows)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"spot_id": id,
		"windows": len(windows),
	})
}

func spotID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
