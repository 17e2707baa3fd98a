package knx

import "sync"

// Version — версия KNX-шлюза, отдаётся в info. Задаётся через ldflags.
var Version = "0.1.0"

// Link — источник признака "соединение с шиной установлено".
type Link interface {
	IsConnected() bool
}

// LinkFunc позволяет использовать функцию как Link.
type LinkFunc func() bool

// IsConnected реализует Link.
func (f LinkFunc) IsConnected() bool { return f() }

// Gateway — объект соединения, который читает мост: версия, состояние, адрес и очередь телеграмм.
type Gateway struct {
	version string
	address IndividualAddress
	queue   *TelegramQueue

	mu   sync.RWMutex
	link Link
}

// GatewayConfig — конфигурация для создания Gateway.
type GatewayConfig struct {
	Version           string
	IndividualAddress IndividualAddress
	Queue             *TelegramQueue
}

// NewGateway создаёт Gateway. Без Link шлюз считается отключённым.
func NewGateway(cfg GatewayConfig) *Gateway {
	version := cfg.Version
	if version == "" {
		version = Version
	}
	return &Gateway{
		version: version,
		address: cfg.IndividualAddress,
		queue:   cfg.Queue,
	}
}

// AttachLink подключает источник состояния соединения (AMQP, MQTT).
func (g *Gateway) AttachLink(l Link) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.link = l
}

// Version возвращает версию шлюза.
func (g *Gateway) Version() string { return g.version }

// Connected сообщает, установлено ли соединение. Читается при каждом вызове.
func (g *Gateway) Connected() bool {
	g.mu.RLock()
	l := g.link
	g.mu.RUnlock()

	if l == nil {
		return false
	}
	return l.IsConnected()
}

// CurrentAddress возвращает индивидуальный адрес шлюза.
func (g *Gateway) CurrentAddress() IndividualAddress { return g.address }

// TelegramQueue возвращает очередь телеграмм шлюза.
func (g *Gateway) TelegramQueue() *TelegramQueue { return g.queue }
