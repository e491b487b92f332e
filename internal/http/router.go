package httpx

import (
	"net/http"

	"log/slog"

	"github.com/thinkingstill/KegelRoulette/internal/app"
	"github.com/thinkingstill/KegelRoulette/internal/ws"
	"github.com/thinkingstill/KegelRoulette/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, logger *slog.Logger, hub *ws.Hub) http.Handler {
	mw := NewMiddleware(cfg)
	api := &RoomsAPI{Hub: hub}

	mux := http.NewServeMux()

	// Health / readiness / metrics
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/readyz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(200) }))
	mux.Handle("/metrics", metrics.Handler())

	// WebSocket endpoint (not rate limited; one long-lived request)
	mux.Handle("/ws", http.HandlerFunc(hub.ServeWS))

	// Room endpoints
	mux.Handle("POST /api/rooms", mw.Limit(http.HandlerFunc(api.Create)))
	mux.Handle("POST /api/rooms/{id}/join", mw.Limit(http.HandlerFunc(api.Join)))
	mux.Handle("GET /api/rooms/{id}", mw.Limit(http.HandlerFunc(api.Get)))

	return mw.Wrap(mux) // CORS applied globally
}
