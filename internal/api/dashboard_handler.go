package api

import (
	"net/http"

	"parkboard/internal/service"
)

type DashboardHandler struct {
	Sync *service.SyncService
}

func NewDashboardHandler(sync *service.SyncService) *DashboardHandler {
	return &DashboardHandler{Sync: sync}
}

// GetDashboard returns the current view for clients not holding a
// WebSocket connection.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Sync.View())
}
