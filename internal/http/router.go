package httpx

import (
	"log/slog"
	"net/http"

	"github.com/scotow/buzzer/internal/app"
	"github.com/scotow/buzzer/internal/ws"
	"github.com/scotow/buzzer/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, reg *ws.Registry) http.Handler {
	mw := NewMiddleware(cfg, logger)
	api := NewRoomsAPI(reg, logger)

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))
	mux.Handle("GET /readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, reg.Stats()) }))
	mux.Handle("GET /metrics", metrics.Handler())

	// Rooms
	mux.Handle("POST /rooms", mw.RateLimit(http.HandlerFunc(api.Reserve)))
	mux.Handle("GET /rooms/id", http.HandlerFunc(api.FindByName))

	// WebSocket endpoints
	mux.Handle("GET /rooms/{id}/host", http.HandlerFunc(api.Host))
	mux.Handle("GET /rooms/{id}/participate", http.HandlerFunc(api.Participate))

	return mw.Wrap(mux)
}
