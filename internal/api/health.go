package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/barang/internal/db"
)

// HealthHandler reports whether the item store is reachable.
type HealthHandler struct {
	DB *db.DB
}

// Check handles GET /healthz.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		slog.Warn("health check failed", "error", err)
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
