package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shaiso/knxpanel/internal/knx"
	"github.com/shaiso/knxpanel/internal/telemetry"
	"github.com/shaiso/knxpanel/internal/wsapi"
)

// Типы команд.
const (
	CommandInfo               = "panel/info"
	CommandSubscribeTelegrams = "panel/subscribe_telegrams"
	CommandGroupMonitorInfo   = "panel/group_monitor_info"
)

// ErrCodeNotLoaded — шлюз недоступен.
const ErrCodeNotLoaded wsapi.ErrorCode = "not_loaded"

// ErrNotLoaded — шлюз не подключён к мосту.
var ErrNotLoaded = errors.New("knx gateway not loaded")

// DefaultRecentLimit — сколько телеграмм отдаёт group_monitor_info по умолчанию.
const DefaultRecentLimit = 50

// Gateway — то, что мосту нужно от KNX-шлюза.
type Gateway interface {
	Version() string
	Connected() bool
	CurrentAddress() knx.IndividualAddress
	TelegramQueue() *knx.TelegramQueue
}

// History отдаёт последние телеграммы, от новых к старым.
type History interface {
	Recent(ctx context.Context, limit int) ([]knx.Telegram, error)
}

// Info — снимок состояния шлюза.
type Info struct {
	Version        string `json:"version"`
	Connected      bool   `json:"connected"`
	CurrentAddress string `json:"current_address"`
}

// GroupMonitorInfo — данные для группового монитора.
type GroupMonitorInfo struct {
	ProjectLoaded   bool               `json:"project_loaded"`
	RecentTelegrams []knx.TelegramDict `json:"recent_telegrams"`
}

// Bridge обслуживает команды панели.
type Bridge struct {
	gateway     Gateway
	history     History
	logger      *slog.Logger
	recentLimit int
}

// Config — конфигурация для создания Bridge.
type Config struct {
	Gateway Gateway
	History History
	Logger  *slog.Logger

	// RecentLimit — максимум телеграмм в group_monitor_info.
	RecentLimit int
}

// New создаёт Bridge.
func New(cfg Config) *Bridge {
	limit := cfg.RecentLimit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &Bridge{
		gateway:     cfg.Gateway,
		history:     cfg.History,
		logger:      cfg.Logger,
		recentLimit: limit,
	}
}

// Register регистрирует команды моста в реестре.
func (b *Bridge) Register(r *wsapi.Registry) error {
	commands := []struct {
		msgType string
		handler wsapi.CommandHandler
	}{
		{CommandInfo, b.HandleInfo},
		{CommandSubscribeTelegrams, b.HandleSubscribeTelegrams},
		{CommandGroupMonitorInfo, b.HandleGroupMonitorInfo},
	}

	for _, c := range commands {
		if err := r.Register(c.msgType, c.handler); err != nil {
			return fmt.Errorf("register %s: %w", c.msgType, err)
		}
	}
	return nil
}

// Info читает состояние шлюза. Значения не кешируются.
func (b *Bridge) Info() (Info, error) {
	if b.gateway == nil {
		return Info{}, ErrNotLoaded
	}
	return Info{
		Version:        b.gateway.Version(),
		Connected:      b.gateway.Connected(),
		CurrentAddress: b.gateway.CurrentAddress().String(),
	}, nil
}

// SubscribeTelegrams регистрирует cb в очереди шлюза.
//
// Возвращённая функция отписывает cb; повторные вызовы — no-op.
func (b *Bridge) SubscribeTelegrams(cb knx.TelegramCallback) (func(), error) {
	queue, err := b.queue()
	if err != nil {
		return nil, err
	}
	return subscribe(queue, cb), nil
}

func (b *Bridge) queue() (*knx.TelegramQueue, error) {
	if b.gateway == nil || b.gateway.TelegramQueue() == nil {
		return nil, ErrNotLoaded
	}
	return b.gateway.TelegramQueue(), nil
}

func subscribe(queue *knx.TelegramQueue, cb knx.TelegramCallback) func() {
	handle := queue.RegisterTelegramCallback(cb)

	var once sync.Once
	return func() {
		once.Do(func() {
			queue.UnregisterTelegramCallback(handle)
		})
	}
}

// HandleInfo обрабатывает panel/info.
func (b *Bridge) HandleInfo(_ context.Context, conn *wsapi.Connection, msg wsapi.Message) {
	info, err := b.Info()
	if err != nil {
		conn.SendError(msg.ID, ErrCodeNotLoaded, err.Error())
		return
	}
	conn.SendResult(msg.ID, info)
}

// HandleSubscribeTelegrams обрабатывает panel/subscribe_telegrams.
//
// Каждая телеграмма отправляется клиенту событием с id запроса.
// Подтверждение ставится в очередь соединения до регистрации callback,
// поэтому клиент видит его раньше первого события.
// Отписка — через unsubscribe_events или закрытие соединения.
func (b *Bridge) HandleSubscribeTelegrams(_ context.Context, conn *wsapi.Connection, msg wsapi.Message) {
	queue, err := b.queue()
	if err != nil {
		conn.SendError(msg.ID, ErrCodeNotLoaded, err.Error())
		return
	}

	forward := func(t knx.Telegram) {
		if conn.SendEvent(msg.ID, t.Dict()) {
			telemetry.TelegramsForwarded.Inc()
		}
	}

	conn.SendResult(msg.ID, nil)
	conn.Subscribe(msg.ID, subscribe(queue, forward))

	conn.Logger().Debug("telegram subscription started", "request_id", msg.ID)
}

// HandleGroupMonitorInfo обрабатывает panel/group_monitor_info.
func (b *Bridge) HandleGroupMonitorInfo(ctx context.Context, conn *wsapi.Connection, msg wsapi.Message) {
	info := GroupMonitorInfo{RecentTelegrams: []knx.TelegramDict{}}

	if b.history != nil {
		telegrams, err := b.history.Recent(ctx, b.recentLimit)
		if err != nil {
			b.logger.Error("failed to load recent telegrams", "error", err)
			conn.SendError(msg.ID, wsapi.ErrCodeUnknownError, "failed to load recent telegrams")
			return
		}
		for _, t := range telegrams {
			info.RecentTelegrams = append(info.RecentTelegrams, t.Dict())
		}
	}

	conn.SendResult(msg.ID, info)
}
