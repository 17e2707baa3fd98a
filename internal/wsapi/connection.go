package wsapi

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shaiso/knxpanel/internal/telemetry"
)

// DefaultSendBuffer — ёмкость очереди исходящих сообщений по умолчанию.
const DefaultSendBuffer = 512

// subscription — запись таблицы подписок: отписка выполняется не более одного раза.
type subscription struct {
	once  sync.Once
	unsub func()
}

func (s *subscription) cancel() {
	s.once.Do(func() {
		s.unsub()
		telemetry.SubscriptionsActive.Dec()
	})
}

// Connection — состояние одного клиента.
//
// Особенности:
// - Исходящие сообщения идут через ограниченную очередь, отправка не блокируется
// - Таблица подписок: id запроса → функция отписки
// - Close отменяет все подписки
type Connection struct {
	id     string
	logger *slog.Logger
	send   chan []byte

	mu            sync.Mutex
	closed        bool
	lastID        int
	subscriptions map[int]*subscription
}

// NewConnection создаёт соединение с очередью отправки заданной ёмкости.
func NewConnection(logger *slog.Logger, sendBuffer int) *Connection {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	id := uuid.NewString()
	return &Connection{
		id:            id,
		logger:        telemetry.WithConnID(logger, id),
		send:          make(chan []byte, sendBuffer),
		subscriptions: make(map[int]*subscription),
	}
}

// ID возвращает идентификатор соединения.
func (c *Connection) ID() string { return c.id }

// Logger возвращает логгер с conn_id.
func (c *Connection) Logger() *slog.Logger { return c.logger }

// Outgoing возвращает очередь исходящих сообщений. Закрывается в Close.
func (c *Connection) Outgoing() <-chan []byte { return c.send }

// SendMessage сериализует v и ставит в очередь отправки.
//
// Возвращает false, если соединение закрыто или очередь переполнена
// (сообщение отброшено).
func (c *Connection) SendMessage(v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("failed to marshal message", "error", err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		telemetry.WSDroppedMessages.Inc()
		c.logger.Warn("send queue full, message dropped")
		return false
	}
}

// SendResult отправляет успешный ответ.
func (c *Connection) SendResult(id int, result any) bool {
	return c.SendMessage(NewResult(id, result))
}

// SendError отправляет ответ с ошибкой.
func (c *Connection) SendError(id int, code ErrorCode, message string) bool {
	return c.SendMessage(NewError(id, code, message))
}

// SendEvent отправляет событие подписки id.
func (c *Connection) SendEvent(id int, event any) bool {
	return c.SendMessage(NewEvent(id, event))
}

// Subscribe сохраняет функцию отписки для id.
//
// Если соединение уже закрыто, unsub вызывается сразу.
func (c *Connection) Subscribe(id int, unsub func()) {
	sub := &subscription{unsub: unsub}
	telemetry.SubscriptionsActive.Inc()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sub.cancel()
		return
	}
	prev := c.subscriptions[id]
	c.subscriptions[id] = sub
	c.mu.Unlock()

	if prev != nil {
		prev.cancel()
	}
}

// Unsubscribe отменяет подписку id. Возвращает false, если её нет.
func (c *Connection) Unsubscribe(id int) bool {
	c.mu.Lock()
	sub, ok := c.subscriptions[id]
	delete(c.subscriptions, id)
	c.mu.Unlock()

	if !ok {
		return false
	}
	sub.cancel()
	return true
}

// Subscriptions возвращает количество живых подписок.
func (c *Connection) Subscriptions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subscriptions)
}

// acceptID проверяет, что id больше всех предыдущих, и запоминает его.
func (c *Connection) acceptID(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id <= c.lastID {
		return false
	}
	c.lastID = id
	return true
}

// Close отменяет все подписки и закрывает очередь отправки. Повторный вызов — no-op.
func (c *Connection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)

	subs := c.subscriptions
	c.subscriptions = make(map[int]*subscription)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.cancel()
	}

	c.logger.Debug("connection closed", "subscriptions_cancelled", len(subs))
}
