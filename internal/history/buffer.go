package history

import (
	"context"
	"sync"

	"github.com/shaiso/knxpanel/internal/knx"
)

// DefaultBufferSize — ёмкость буфера по умолчанию.
const DefaultBufferSize = 50

// Buffer — кольцевой буфер последних телеграмм.
type Buffer struct {
	mu    sync.Mutex
	items []knx.Telegram
	next  int
	full  bool
}

// NewBuffer создаёт буфер заданной ёмкости.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &Buffer{items: make([]knx.Telegram, capacity)}
}

// Add добавляет телеграмму, вытесняя самую старую. Подходит как knx.TelegramCallback.
func (b *Buffer) Add(t knx.Telegram) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.next] = t
	b.next = (b.next + 1) % len(b.items)
	if b.next == 0 {
		b.full = true
	}
}

// Len возвращает количество телеграмм в буфере.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.full {
		return len(b.items)
	}
	return b.next
}

// Recent возвращает до limit последних телеграмм, от новых к старым.
func (b *Buffer) Recent(_ context.Context, limit int) ([]knx.Telegram, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.next
	if b.full {
		n = len(b.items)
	}
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]knx.Telegram, 0, n)
	idx := b.next
	for range n {
		idx = (idx - 1 + len(b.items)) % len(b.items)
		out = append(out, b.items[idx])
	}
	return out, nil
}
