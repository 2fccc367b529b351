package handler

import (
	"net/http"

	"github.com/msomdec/user-dashboard/internal/service"
)

// HealthHandler reports liveness and whether the last user load succeeded.
type HealthHandler struct {
	users *service.UserService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(users *service.UserService) *HealthHandler {
	return &HealthHandler{users: users}
}

// HandleHealthz always answers 200; status is "degraded" while the remote
// API could not be loaded, since the dashboard still serves an empty table.
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if err := h.users.LoadError(); err != nil {
		body["status"] = "degraded"
		body["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, body)
}
