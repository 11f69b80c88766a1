package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/clipstream/backend/internal/logging"
)

// HealthHandler responds with service health information.
type HealthHandler struct {
	DB Pinger
}

// Handle implements GET /healthz. The database is pinged with a short
// deadline so a stuck pool reports unhealthy instead of hanging the probe.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.DB != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := h.DB.Ping(pingCtx); err != nil {
			logging.FromContext(ctx).Error("health check database ping", "error", err)
			respondError(ctx, w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}

	respondData(ctx, w, http.StatusOK, map[string]string{"status": "ok"}, "healthy")
}
