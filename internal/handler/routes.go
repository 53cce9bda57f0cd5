package handler

import (
	"net/http"

	"github.com/freeeve/arena-agent/internal/auth"
	"github.com/freeeve/arena-agent/internal/middleware"
)

// NewRouter wires the spectator endpoints: public health, JWT-protected
// status and the token-in-query WebSocket feed.
func NewRouter(hub *Hub, src StatusSource, jwtMgr *auth.JWTManager) http.Handler {
	status := NewStatusHandler(src)
	ws := NewWSHandler(hub, jwtMgr)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", status.Healthz)

	api := http.NewServeMux()
	api.HandleFunc("GET /status", status.Status)
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", auth.Middleware(jwtMgr)(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", ws.ServeWS)

	return middleware.Chain(mux, middleware.Logger, middleware.CORS("*"))
}
