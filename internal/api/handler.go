package api

import (
	"log/slog"
	"net/http"

	"github.com/shaiso/knxpanel/internal/bridge"
	"github.com/shaiso/knxpanel/internal/host"
)

// PanelSource — источник зарегистрированных панелей.
type PanelSource interface {
	Panels() map[string]host.Panel
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	panels    PanelSource
	history   bridge.History
	websocket http.Handler
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Panels PanelSource

	// History — последние телеграммы; nil отключает /api/telegrams.
	History bridge.History

	// WebSocket — обработчик командного канала.
	WebSocket http.Handler

	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		panels:    cfg.Panels,
		history:   cfg.History,
		websocket: cfg.WebSocket,
		logger:    cfg.Logger,
	}
}
