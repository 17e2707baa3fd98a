package panel

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shaiso/knxpanel/internal/host"
)

// Фиксированные метаданные панели.
const (
	ComponentName   = "custom"
	CustomName      = "knx-custom-panel"
	SidebarTitle    = "KNX UI"
	SidebarIcon     = "mdi:earth"
	FrontendURLPath = "knx_ui"

	// DefaultStaticPath — URL, по которому хост отдаёт JS панели.
	DefaultStaticPath = "/api/panel_custom/knx_ui"
)

// buildID задаётся через ldflags (-X .../internal/panel.buildID=<hash>) при сборке фронтенда.
var buildID = ""

// BuildID возвращает идентификатор сборки фронтенда; "dev" для локальной сборки.
func BuildID() string {
	if buildID == "" {
		return "dev"
	}
	return buildID
}

// JSURL возвращает URL скрипта панели с build id для сброса кеша браузера.
func JSURL(staticPath string) string {
	return staticPath + "?v=" + BuildID()
}

// Host — то, что панели нужно от хоста.
type Host interface {
	RegisterStaticPath(urlPath, filePath string) error
	RemoveStaticPath(urlPath string)
	StaticPath(urlPath string) (string, bool)
	RegisterPanel(p host.Panel) error
	RemovePanel(urlPath string) bool
}

// Record строит запись о панели для заданного статического пути.
func Record(staticPath string) host.Panel {
	return host.Panel{
		ComponentName:   ComponentName,
		SidebarTitle:    SidebarTitle,
		SidebarIcon:     SidebarIcon,
		FrontendURLPath: FrontendURLPath,
		Config: map[string]any{
			"_panel_custom": map[string]any{
				"name":           CustomName,
				"embed_iframe":   false,
				"trust_external": false,
				"js_url":         JSURL(staticPath),
			},
		},
		RequireAdmin: true,
	}
}

// Registration — результат регистрации панели. Close снимает её с хоста.
type Registration struct {
	host       Host
	staticPath string
	urlPath    string

	once sync.Once
	err  error
}

// Register отдаёт localFile по staticPath и регистрирует панель в навигации.
//
// Ошибки хоста (конфликт пути, дубликат панели) возвращаются как есть,
// повторных попыток нет. Если панель не зарегистрирована, статический путь,
// добавленный этим вызовом, снимается.
func Register(h Host, staticPath, localFile string) (*Registration, error) {
	_, existed := h.StaticPath(staticPath)
	if err := h.RegisterStaticPath(staticPath, localFile); err != nil {
		return nil, fmt.Errorf("register static path: %w", err)
	}

	record := Record(staticPath)
	if err := h.RegisterPanel(record); err != nil {
		if !existed {
			h.RemoveStaticPath(staticPath)
		}
		return nil, fmt.Errorf("register panel: %w", err)
	}

	return &Registration{
		host:       h,
		staticPath: staticPath,
		urlPath:    record.FrontendURLPath,
	}, nil
}

// URLPath возвращает url_path зарегистрированной панели.
func (r *Registration) URLPath() string { return r.urlPath }

// Close снимает панель и статический путь. Повторный вызов — no-op.
func (r *Registration) Close() error {
	r.once.Do(func() {
		if !r.host.RemovePanel(r.urlPath) {
			r.err = errors.New("panel already removed: " + r.urlPath)
		}
		r.host.RemoveStaticPath(r.staticPath)
	})
	return r.err
}
