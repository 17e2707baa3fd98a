package knx

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/shaiso/knxpanel/internal/telemetry"
)

// TelegramCallback вызывается для каждой телеграммы. Не должен блокироваться.
type TelegramCallback func(Telegram)

// CallbackHandle идентифицирует зарегистрированный callback.
//
// Функции в Go несравнимы, поэтому отписка идёт по handle, а не по самой функции.
type CallbackHandle uint64

type registeredCallback struct {
	handle CallbackHandle
	fn     TelegramCallback
}

// TelegramQueue принимает телеграммы от feed'ов и раздаёт их callback'ам.
//
// Особенности:
// - Телеграммы раздаются из одной горутины (Run), порядок сохраняется
// - Callback'и вызываются в порядке регистрации
// - Паника в callback'е логируется и не мешает остальным
type TelegramQueue struct {
	logger *slog.Logger
	queue  chan Telegram

	mu        sync.RWMutex
	nextID    CallbackHandle
	callbacks []registeredCallback
}

// NewTelegramQueue создаёт очередь заданной ёмкости.
func NewTelegramQueue(size int, logger *slog.Logger) *TelegramQueue {
	if size <= 0 {
		size = 256
	}
	return &TelegramQueue{
		logger: logger,
		queue:  make(chan Telegram, size),
	}
}

// RegisterTelegramCallback регистрирует callback и возвращает handle для отписки.
func (q *TelegramQueue) RegisterTelegramCallback(cb TelegramCallback) CallbackHandle {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	q.callbacks = append(q.callbacks, registeredCallback{handle: q.nextID, fn: cb})
	return q.nextID
}

// UnregisterTelegramCallback удаляет callback. Повторный вызов — no-op.
//
// После возврата новые телеграммы этому callback'у не передаются;
// вызов, уже идущий в Dispatch, может завершиться.
func (q *TelegramQueue) UnregisterTelegramCallback(h CallbackHandle) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, rc := range q.callbacks {
		if rc.handle == h {
			q.callbacks = append(q.callbacks[:i:i], q.callbacks[i+1:]...)
			return
		}
	}
}

// Len возвращает количество зарегистрированных callback'ов.
func (q *TelegramQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.callbacks)
}

// Put ставит телеграмму в очередь. Не блокируется: при переполнении возвращает ErrQueueFull.
func (q *TelegramQueue) Put(t Telegram) error {
	select {
	case q.queue <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run раздаёт телеграммы из очереди до отмены контекста.
func (q *TelegramQueue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-q.queue:
			q.Dispatch(t)
		}
	}
}

// Dispatch синхронно передаёт телеграмму всем зарегистрированным callback'ам.
func (q *TelegramQueue) Dispatch(t Telegram) {
	telemetry.TelegramsReceived.Inc()

	q.mu.RLock()
	snapshot := make([]registeredCallback, len(q.callbacks))
	copy(snapshot, q.callbacks)
	q.mu.RUnlock()

	for _, rc := range snapshot {
		q.invoke(rc, t)
	}
}

func (q *TelegramQueue) invoke(rc registeredCallback, t Telegram) {
	defer func() {
		if err := recover(); err != nil {
			q.logger.Error("telegram callback panicked",
				"handle", rc.handle,
				"error", err,
				"stack", string(debug.Stack()),
			)
		}
	}()

	rc.fn(t)
}
