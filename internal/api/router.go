package api

import (
	"net/http"

	"github.com/erazemk/barang/internal/db"
)

// NewRouter creates the item API router with all endpoints registered.
// Cross-origin requests are accepted only from allowedOrigin.
func NewRouter(d *db.DB, allowedOrigin string) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{DB: d}
	healthHandler := &HealthHandler{DB: d}

	mux.HandleFunc("GET /items", itemsHandler.List)
	mux.HandleFunc("POST /items", itemsHandler.Create)
	mux.HandleFunc("GET /items/{id}", itemsHandler.Get)
	mux.HandleFunc("PUT /items/{id}", itemsHandler.Update)
	mux.HandleFunc("DELETE /items/{id}", itemsHandler.Delete)

	mux.HandleFunc("GET /healthz", healthHandler.Check)

	return CORSMiddleware(allowedOrigin)(mux)
}
