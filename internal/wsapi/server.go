package wsapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/shaiso/knxpanel/internal/telemetry"
)

const (
	// writeTimeout — время на запись одного сообщения клиенту.
	writeTimeout = 10 * time.Second

	// maxMessageSize — максимальный размер входящего сообщения.
	maxMessageSize = 64 * 1024
)

// Server — http.Handler, поднимающий WebSocket и обслуживающий команды.
type Server struct {
	registry       *Registry
	logger         *slog.Logger
	sendBuffer     int
	originPatterns []string
}

// ServerConfig — конфигурация для создания Server.
type ServerConfig struct {
	Registry *Registry
	Logger   *slog.Logger

	// SendBuffer — ёмкость очереди исходящих сообщений соединения.
	SendBuffer int

	// OriginPatterns — допустимые Origin для cross-origin подключений.
	OriginPatterns []string
}

// NewServer создаёт Server.
func NewServer(cfg ServerConfig) *Server {
	return &Server{
		registry:       cfg.Registry,
		logger:         cfg.Logger,
		sendBuffer:     cfg.SendBuffer,
		originPatterns: cfg.OriginPatterns,
	}
}

// ServeHTTP обслуживает одно соединение до его закрытия.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns,
	})
	if err != nil {
		// Accept уже записал ответ клиенту
		s.logger.Warn("websocket accept failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}
	ws.SetReadLimit(maxMessageSize)

	conn := NewConnection(s.logger, s.sendBuffer)
	conn.Logger().Info("websocket connected", "remote_addr", r.RemoteAddr)

	telemetry.WSConnections.Inc()
	defer telemetry.WSConnections.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx, cancel, ws, conn)
	}()

	err = s.readLoop(ctx, ws, conn)

	// Отписываемся до закрытия сокета, чтобы новые события не попадали в очередь
	conn.Close()
	<-writerDone

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		ws.Close(websocket.StatusGoingAway, "server shutting down")
	case websocket.CloseStatus(err) != -1:
		ws.Close(websocket.StatusNormalClosure, "")
	default:
		conn.Logger().Warn("websocket read failed", "error", err)
		ws.CloseNow()
	}

	conn.Logger().Info("websocket disconnected")
}

// readLoop читает команды и выполняет их последовательно.
func (s *Server) readLoop(ctx context.Context, ws *websocket.Conn, conn *Connection) error {
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			return err
		}

		if typ != websocket.MessageText {
			conn.SendError(0, ErrCodeInvalidFormat, "binary messages are not supported")
			continue
		}

		s.registry.Dispatch(ctx, conn, data)
	}
}

// writeLoop пишет сообщения из очереди соединения, пока очередь не закрыта.
func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, ws *websocket.Conn, conn *Connection) {
	for data := range conn.Outgoing() {
		if err := s.write(ctx, ws, data); err != nil {
			conn.Logger().Debug("websocket write failed", "error", err)
			cancel()
			// Дочитываем очередь, чтобы не держать сообщения в памяти
			for range conn.Outgoing() {
			}
			return
		}
	}
}

func (s *Server) write(ctx context.Context, ws *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}
