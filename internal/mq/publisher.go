package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/knxpanel/internal/knx"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// MessageTypeTelegram — телеграмма KNX в wire-формате.
const MessageTypeTelegram MessageType = "knx.telegram"

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
	topo   Topology
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger, topo Topology) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
		topo:   topo.withDefaults(),
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// NewTelegramMessage оборачивает телеграмму в конверт.
func NewTelegramMessage(t knx.Telegram) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeTelegram,
		Payload:   knx.NewWireTelegram(t),
		Timestamp: time.Now(),
	}
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Transient,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Type:         string(msg.Type),
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishTelegram публикует телеграмму в exchange телеграмм.
// Ключ маршрутизации строится из группового адреса назначения.
func (p *Publisher) PublishTelegram(ctx context.Context, t knx.Telegram) error {
	return p.Publish(ctx, p.topo.Exchange, TelegramRoutingKey(t.DestinationAddress), NewTelegramMessage(t))
}
