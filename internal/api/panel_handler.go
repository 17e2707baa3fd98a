package api

import (
	"net/http"
)

// ListPanels возвращает зарегистрированные панели.
// GET /api/panels
func (h *Handler) ListPanels(w http.ResponseWriter, r *http.Request) {
	result := PanelsFromHost(h.panels.Panels())
	List(w, result, len(result))
}

// GetPanel возвращает панель по url_path.
// GET /api/panels/{url_path}
func (h *Handler) GetPanel(w http.ResponseWriter, r *http.Request) {
	urlPath := r.PathValue("url_path")

	p, ok := h.panels.Panels()[urlPath]
	if !ok {
		NotFound(w, "panel not found")
		return
	}

	Success(w, PanelFromHost(p))
}
