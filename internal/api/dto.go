package api

import (
	"sort"

	"github.com/shaiso/knxpanel/internal/host"
	"github.com/shaiso/knxpanel/internal/knx"
)

// Panel DTOs

// PanelResponse — ответ с панелью.
type PanelResponse struct {
	URLPath       string         `json:"url_path"`
	ComponentName string         `json:"component_name"`
	Title         string         `json:"title"`
	Icon          string         `json:"icon"`
	RequireAdmin  bool           `json:"require_admin"`
	Config        map[string]any `json:"config,omitempty"`
}

// PanelFromHost конвертирует host.Panel в PanelResponse.
func PanelFromHost(p host.Panel) PanelResponse {
	return PanelResponse{
		URLPath:       p.FrontendURLPath,
		ComponentName: p.ComponentName,
		Title:         p.SidebarTitle,
		Icon:          p.SidebarIcon,
		RequireAdmin:  p.RequireAdmin,
		Config:        p.Config,
	}
}

// PanelsFromHost возвращает панели, отсортированные по url_path.
func PanelsFromHost(panels map[string]host.Panel) []PanelResponse {
	result := make([]PanelResponse, 0, len(panels))
	for _, p := range panels {
		result = append(result, PanelFromHost(p))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].URLPath < result[j].URLPath
	})
	return result
}

// Telegram DTOs

// TelegramsFromKNX проецирует телеграммы в строковый вид UI.
func TelegramsFromKNX(ts []knx.Telegram) []knx.TelegramDict {
	result := make([]knx.TelegramDict, len(ts))
	for i, t := range ts {
		result[i] = t.Dict()
	}
	return result
}
