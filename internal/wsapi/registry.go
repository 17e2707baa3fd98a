package wsapi

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/shaiso/knxpanel/internal/telemetry"
)

// ErrAlreadyRegistered — команда с таким типом уже зарегистрирована.
var ErrAlreadyRegistered = errors.New("command already registered")

// Встроенные команды.
const (
	CommandPing              = "ping"
	CommandUnsubscribeEvents = "unsubscribe_events"
)

// CommandHandler обрабатывает одну команду. Ответ отправляется через conn.
//
// Вызывается в цикле чтения соединения и не должен блокироваться надолго.
type CommandHandler func(ctx context.Context, conn *Connection, msg Message)

// Registry — реестр команд по типу сообщения.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]CommandHandler
}

// NewRegistry создаёт реестр со встроенными командами ping и unsubscribe_events.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]CommandHandler)}
	r.handlers[CommandPing] = handlePing
	r.handlers[CommandUnsubscribeEvents] = handleUnsubscribeEvents
	return r
}

// Register добавляет обработчик команды.
func (r *Registry) Register(msgType string, h CommandHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.handlers[msgType]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, msgType)
	}
	r.handlers[msgType] = h
	return nil
}

func (r *Registry) lookup(msgType string) (CommandHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[msgType]
	return h, ok
}

// Dispatch разбирает сообщение и вызывает обработчик.
func (r *Registry) Dispatch(ctx context.Context, conn *Connection, data []byte) {
	msg, err := parseMessage(data)
	if err != nil {
		telemetry.WSCommands.WithLabelValues("", "invalid").Inc()
		conn.SendError(msg.ID, ErrCodeInvalidFormat, err.Error())
		return
	}

	if !conn.acceptID(msg.ID) {
		telemetry.WSCommands.WithLabelValues(msg.Type, "invalid").Inc()
		conn.SendError(msg.ID, ErrCodeIDReuse, "Identifier values have to increase.")
		return
	}

	handler, ok := r.lookup(msg.Type)
	if !ok {
		telemetry.WSCommands.WithLabelValues("", "unknown").Inc()
		conn.SendError(msg.ID, ErrCodeUnknownCommand, "Unknown command.")
		return
	}

	logger := telemetry.WithRequestID(conn.Logger(), msg.ID, msg.Type)
	logger.Debug("handling command")

	if r.invoke(ctx, handler, conn, msg) {
		telemetry.WSCommands.WithLabelValues(msg.Type, "ok").Inc()
	} else {
		telemetry.WSCommands.WithLabelValues(msg.Type, "panic").Inc()
	}
}

func (r *Registry) invoke(ctx context.Context, h CommandHandler, conn *Connection, msg Message) (ok bool) {
	defer func() {
		if err := recover(); err != nil {
			conn.Logger().Error("command handler panicked",
				"type", msg.Type,
				"request_id", msg.ID,
				"error", err,
				"stack", string(debug.Stack()),
			)
			conn.SendError(msg.ID, ErrCodeUnknownError, "Unknown error.")
			ok = false
		}
	}()

	h(ctx, conn, msg)
	return true
}

func handlePing(_ context.Context, conn *Connection, msg Message) {
	conn.SendMessage(PongMessage{ID: msg.ID, Type: TypePong})
}

func handleUnsubscribeEvents(_ context.Context, conn *Connection, msg Message) {
	var req struct {
		Subscription *int `json:"subscription"`
	}
	if err := msg.Decode(&req); err != nil || req.Subscription == nil {
		conn.SendError(msg.ID, ErrCodeInvalidFormat, "subscription is required")
		return
	}

	if !conn.Unsubscribe(*req.Subscription) {
		conn.SendError(msg.ID, ErrCodeNotFound, "Subscription not found.")
		return
	}

	conn.SendResult(msg.ID, nil)
}
