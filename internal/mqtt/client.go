package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/shaiso/knxpanel/internal/knx"
	"github.com/shaiso/knxpanel/internal/telemetry"
)

// Значения по умолчанию.
const (
	DefaultBroker = "tcp://localhost:1883"
	DefaultTopic  = "knx/telegram/#"
)

// feedName — метка feed'а в метриках.
const feedName = "mqtt"

// disconnectQuiesce — время на корректное отключение, мс.
const disconnectQuiesce = 250

// Config — конфигурация MQTT-клиента.
type Config struct {
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      byte

	Queue  *knx.TelegramQueue
	Logger *slog.Logger
}

// Client получает телеграммы из MQTT-брокера.
// Реализует knx.Link.
type Client struct {
	cfg    Config
	logger *slog.Logger
	client paho.Client
	now    func() time.Time
}

// NewClient создаёт клиента. Подключение выполняет Connect.
func NewClient(cfg Config) *Client {
	if cfg.Broker == "" {
		cfg.Broker = DefaultBroker
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.ClientID == "" {
		cfg.ClientID = fmt.Sprintf("knxpanel-%d", time.Now().Unix())
	}

	return &Client{
		cfg:    cfg,
		logger: telemetry.WithFeed(cfg.Logger, feedName),
		now:    time.Now,
	}
}

// Connect подключается к брокеру. Подписка оформляется в onConnect,
// поэтому восстанавливается после каждого переподключения.
func (c *Client) Connect() error {
	opts := paho.NewClientOptions()
	opts.AddBroker(c.cfg.Broker)
	opts.SetClientID(c.cfg.ClientID)
	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}

	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)

	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Minute)

	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.client = paho.NewClient(opts)

	c.logger.Info("connecting to MQTT broker", "broker", c.cfg.Broker)

	token := c.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect mqtt %s: %w", c.cfg.Broker, token.Error())
	}

	return nil
}

func (c *Client) onConnect(client paho.Client) {
	c.logger.Info("connected, subscribing", "topic", c.cfg.Topic)

	token := client.Subscribe(c.cfg.Topic, c.cfg.QoS, c.messageHandler)
	if token.Wait() && token.Error() != nil {
		c.logger.Error("subscribe failed", "topic", c.cfg.Topic, "error", token.Error())
	}
}

func (c *Client) onConnectionLost(_ paho.Client, err error) {
	c.logger.Warn("connection lost, will reconnect", "error", err)
}

func (c *Client) messageHandler(_ paho.Client, msg paho.Message) {
	if err := c.handlePayload(msg.Payload()); err != nil {
		c.logger.Warn("telegram dropped", "topic", msg.Topic(), "error", err)
	}
}

// handlePayload разбирает телеграмму и кладёт её в очередь.
func (c *Client) handlePayload(payload []byte) error {
	var wire knx.WireTelegram
	if err := json.Unmarshal(payload, &wire); err != nil {
		telemetry.FeedMessages.WithLabelValues(feedName, "invalid").Inc()
		return fmt.Errorf("decode telegram: %w", err)
	}

	t, err := wire.Telegram(c.now)
	if err != nil {
		telemetry.FeedMessages.WithLabelValues(feedName, "invalid").Inc()
		return err
	}

	if err := c.cfg.Queue.Put(t); err != nil {
		if errors.Is(err, knx.ErrQueueFull) {
			telemetry.FeedMessages.WithLabelValues(feedName, "discarded").Inc()
		}
		return err
	}

	telemetry.FeedMessages.WithLabelValues(feedName, "ok").Inc()
	return nil
}

// IsConnected сообщает, подключён ли клиент к брокеру.
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Close отписывается и отключается от брокера.
func (c *Client) Close() {
	if c.client == nil {
		return
	}

	if c.client.IsConnected() {
		c.client.Unsubscribe(c.cfg.Topic)
		c.client.Disconnect(disconnectQuiesce)
	}

	c.logger.Info("mqtt client closed")
}
