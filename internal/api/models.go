package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	httperrors "parkboard/internal/errors"
)

// Registration / login
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Reservation
type ReserveRequest struct {
	SlotKey string `json:"slot_key"`
}

// Admin
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type AdminLoginResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// respondError maps an HTTPError to its status and anything else to a
// plain 500.
func respondError(w http.ResponseWriter, err error) {
	var httpErr *httperrors.HTTPError
	if errors.As(err, &httpErr) {
		writeError(w, httpErr.Code, httpErr.Message)
		return
	}
	log.Printf("Unhandled error: %v", err)
	writeError(w, http.StatusInternalServerError, "Server error")
}
