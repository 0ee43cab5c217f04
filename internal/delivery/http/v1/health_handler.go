package v1

import (
	"context"
	"net/http"
	"time"

	"agence-dashboard/pkg/utils"
)

// Pinger is satisfied by the pgx pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

// NewHealthHandler reports on db when sessions are persisted, and on the
// process alone otherwise (db may be nil).
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "sessions": "memory"}
	if h.db == nil {
		utils.WriteJSON(w, http.StatusOK, status)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status["sessions"] = "postgres"
	if err := h.db.Ping(ctx); err != nil {
		status["status"] = "degraded"
		status["db"] = "unreachable"
		utils.WriteJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	status["db"] = "connected"
	utils.WriteJSON(w, http.StatusOK, status)
}
