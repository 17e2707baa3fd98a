package host

import (
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"sync"
)

// Panel — запись о панели в боковой навигации хоста.
type Panel struct {
	ComponentName   string         `json:"component_name"`
	SidebarTitle    string         `json:"title"`
	SidebarIcon     string         `json:"icon"`
	FrontendURLPath string         `json:"url_path"`
	Config          map[string]any `json:"config"`
	RequireAdmin    bool           `json:"require_admin"`
}

// Server — хост: статические пути и реестр панелей поверх http.ServeMux.
type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger

	mu      sync.RWMutex
	static  map[string]string // url path → локальный файл
	mounted map[string]bool   // пути, уже добавленные в mux
	panels  map[string]Panel  // url_path → панель
}

// New создаёт хост, монтирующий статические пути в mux.
func New(mux *http.ServeMux, logger *slog.Logger) *Server {
	return &Server{
		mux:     mux,
		logger:  logger,
		static:  make(map[string]string),
		mounted: make(map[string]bool),
		panels:  make(map[string]Panel),
	}
}

// RegisterStaticPath отдаёт filePath по urlPath.
//
// Повторная регистрация того же файла — no-op; другого файла — ErrConflict.
func (s *Server) RegisterStaticPath(urlPath, filePath string) error {
	if !validURLPath(urlPath) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, urlPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.static[urlPath]; ok {
		if existing == filePath {
			return nil
		}
		return fmt.Errorf("%w: %s already serves %s", ErrConflict, urlPath, existing)
	}

	// ServeMux не умеет удалять маршруты, поэтому монтируем один раз,
	// а наличие пути проверяем в обработчике.
	if !s.mounted[urlPath] {
		if err := s.mount("GET "+urlPath, s.serveStatic(urlPath)); err != nil {
			return err
		}
		s.mounted[urlPath] = true
	}

	s.static[urlPath] = filePath

	s.logger.Info("static path registered", "url_path", urlPath, "file", filePath)
	return nil
}

// mount добавляет маршрут в mux. Паника ServeMux на пересекающийся шаблон
// превращается в ErrConflict.
func (s *Server) mount(pattern string, h http.HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrConflict, pattern, r)
		}
	}()
	s.mux.HandleFunc(pattern, h)
	return nil
}

// RemoveStaticPath снимает статический путь. Неизвестный путь — no-op.
func (s *Server) RemoveStaticPath(urlPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.static, urlPath)
}

// StaticPath возвращает файл, зарегистрированный для urlPath.
func (s *Server) StaticPath(urlPath string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	file, ok := s.static[urlPath]
	return file, ok
}

func (s *Server) serveStatic(urlPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, ok := s.StaticPath(urlPath)
		if !ok {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, file)
	}
}

// RegisterPanel добавляет панель в навигацию. Дубликат url_path — ErrAlreadyRegistered.
func (s *Server) RegisterPanel(p Panel) error {
	if p.FrontendURLPath == "" || strings.ContainsAny(p.FrontendURLPath, "/ ") {
		return fmt.Errorf("%w: panel url_path %q", ErrInvalidPath, p.FrontendURLPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.panels[p.FrontendURLPath]; ok {
		return fmt.Errorf("%w: panel %s", ErrAlreadyRegistered, p.FrontendURLPath)
	}

	s.panels[p.FrontendURLPath] = p

	s.logger.Info("panel registered",
		"url_path", p.FrontendURLPath,
		"title", p.SidebarTitle,
		"require_admin", p.RequireAdmin,
	)
	return nil
}

// RemovePanel удаляет панель. Возвращает false, если панели не было.
func (s *Server) RemovePanel(urlPath string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.panels[urlPath]; !ok {
		return false
	}
	delete(s.panels, urlPath)
	return true
}

// Panels возвращает копию реестра панелей.
func (s *Server) Panels() map[string]Panel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.panels)
}

func validURLPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.ContainsAny(p, "{} \t")
}
