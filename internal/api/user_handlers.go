package api

import (
	"encoding/json"
	"errors"
	"net/http"

	httperrors "parkboard/internal/errors"
	"parkboard/internal/service"
)

type UserHandler struct {
	Service *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{Service: svc}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	user, err := h.Service.Register(req.FirstName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			respondError(w, httperrors.ErrBadRequest("All fields are required"))
		case errors.Is(err, service.ErrEmailTaken):
			respondError(w, httperrors.ErrBadRequest("Email already registered"))
		default:
			respondError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	user, err := h.Service.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(w, httperrors.ErrUnauthorized("Invalid credentials"))
			return
		}
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
