package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"parkboard/internal/service"
)

type ReservationHandler struct {
	Service *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Service: svc}
}

// ReserveSlot handles POST /api/reservations. Caller identity comes from
// the X-User-ID / X-User-Email headers and is treated as already
// authenticated.
func (h *ReservationHandler) ReserveSlot(w http.ResponseWriter, r *http.Request) {
	uid := r.Header.Get("X-User-ID")
	email := r.Header.Get("X-User-Email")

	var req ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SlotKey == "" {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	confirmation, err := h.Service.ReserveSlot(r.Context(), req.SlotKey, uid, email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLoginRequired):
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error:    "Please login first",
				Redirect: "/login.html",
			})
		case errors.Is(err, service.ErrSlotNotFound):
			writeError(w, http.StatusNotFound, "Slot not found")
		case errors.Is(err, service.ErrSlotOccupied):
			writeError(w, http.StatusConflict, "Slot already occupied")
		default:
			// Remote failure somewhere in the sequence; completed steps
			// stay as they are.
			log.Printf("Error reserving slot %q: %v", req.SlotKey, err)
			writeError(w, http.StatusBadGateway, "Failed to reserve slot. Please try again.")
		}
		return
	}
	writeJSON(w, http.StatusOK, confirmation)
}
