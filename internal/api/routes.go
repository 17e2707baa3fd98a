package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Panels
	mux.Handle("GET /api/panels", chain(http.HandlerFunc(h.ListPanels)))
	mux.Handle("GET /api/panels/{url_path}", chain(http.HandlerFunc(h.GetPanel)))

	// Telegrams
	mux.Handle("GET /api/telegrams", chain(http.HandlerFunc(h.ListTelegrams)))

	// WebSocket живёт долго, поэтому логируется самим wsapi.Server
	if h.websocket != nil {
		mux.Handle("GET /api/websocket", Recovery(h.logger)(h.websocket))
	}
}
