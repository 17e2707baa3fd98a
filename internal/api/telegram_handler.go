package api

import (
	"net/http"
	"strconv"

	"github.com/shaiso/knxpanel/internal/bridge"
)

// ListTelegrams возвращает последние телеграммы, новые первыми.
// GET /api/telegrams?limit=N
func (h *Handler) ListTelegrams(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		HandleError(w, h.logger, bridge.ErrNotLoaded)
		return
	}

	limit := bridge.DefaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	telegrams, err := h.history.Recent(r.Context(), limit)
	if HandleError(w, h.logger, err) {
		return
	}

	result := TelegramsFromKNX(telegrams)
	List(w, result, len(result))
}
