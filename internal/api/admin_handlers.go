package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	httperrors "parkboard/internal/errors"
	"parkboard/internal/service"
)

type AdminHandler struct {
	Auth  service.AdminAuthService
	Admin *service.AdminService
	Jobs  *service.JobService
}

func NewAdminHandler(auth service.AdminAuthService, admin *service.AdminService, jobs *service.JobService) *AdminHandler {
	return &AdminHandler{Auth: auth, Admin: admin, Jobs: jobs}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	token, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		respondError(w, httperrors.ErrUnauthorized("Invalid credentials"))
		return
	}
	writeJSON(w, http.StatusOK, AdminLoginResponse{Token: token})
}

// Provision seeds the store with the demo lot. Existing data is kept
// unless ?force=true.
func (h *AdminHandler) Provision(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	if err := h.Admin.Provision(r.Context(), force); err != nil {
		if errors.Is(err, service.ErrAlreadyProvisioned) {
			respondError(w, httperrors.ErrConflict("Store already provisioned; use force=true to reset"))
			return
		}
		log.Printf("Error provisioning store: %v", err)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Parking lot provisioned"})
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.Admin.ListBookings(r.Context())
	if err != nil {
		log.Printf("Error listing bookings: %v", err)
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// DriftReport runs a drift sweep on demand.
func (h *AdminHandler) DriftReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Jobs.CheckCounterDrift(r.Context())
	if err != nil {
		log.Printf("Error checking counter drift: %v", err)
		respondError(w, err)
		return
	}
	if report == nil {
		respondError(w, httperrors.ErrNotFound("Parking stats not provisioned"))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
