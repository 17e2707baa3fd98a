package mq

import (
	"context"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/knxpanel/internal/knx"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Имена по умолчанию.
const (
	ExchangeTelegrams Exchange   = "knx.telegrams"
	QueueTelegrams    Queue      = "knxpanel.telegrams"
	RoutingKeyAll     RoutingKey = "telegram.#"
)

// routingPrefix — префикс ключей маршрутизации телеграмм.
const routingPrefix = "telegram"

// messageTTL — время жизни телеграммы в очереди, мс.
// Устаревшие телеграммы в мониторе бесполезны.
const messageTTL = 60_000

// Topology — имена обменника, очереди и ключа привязки.
type Topology struct {
	Exchange   Exchange
	Queue      Queue
	RoutingKey RoutingKey
}

// DefaultTopology возвращает topology по умолчанию.
func DefaultTopology() Topology {
	return Topology{
		Exchange:   ExchangeTelegrams,
		Queue:      QueueTelegrams,
		RoutingKey: RoutingKeyAll,
	}
}

// withDefaults заполняет пустые поля значениями по умолчанию.
func (t Topology) withDefaults() Topology {
	def := DefaultTopology()
	if t.Exchange == "" {
		t.Exchange = def.Exchange
	}
	if t.Queue == "" {
		t.Queue = def.Queue
	}
	if t.RoutingKey == "" {
		t.RoutingKey = def.RoutingKey
	}
	return t
}

// TelegramRoutingKey строит ключ маршрутизации для телеграммы.
// Групповой адрес 1/2/3 даёт ключ telegram.1.2.3.
func TelegramRoutingKey(dst knx.GroupAddress) RoutingKey {
	return RoutingKey(routingPrefix + "." + strings.ReplaceAll(dst.String(), "/", "."))
}

// SetupTopology объявляет exchange, очередь и привязку.
func SetupTopology(ctx context.Context, conn *Connection, topo Topology) error {
	topo = topo.withDefaults()

	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(topo.Exchange), // name
			"topic",               // type
			true,                  // durable
			false,                 // auto-deleted
			false,                 // internal
			false,                 // no-wait
			nil,                   // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", topo.Exchange, err)
		}

		_, err = ch.QueueDeclare(
			string(topo.Queue), // name
			true,               // durable
			false,              // delete when unused
			false,              // exclusive
			false,              // no-wait
			queueArgs(),        // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", topo.Queue, err)
		}

		err = ch.QueueBind(
			string(topo.Queue),      // queue name
			string(topo.RoutingKey), // routing key
			string(topo.Exchange),   // exchange
			false,                   // no-wait
			nil,                     // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", topo.Queue, topo.Exchange, err)
		}

		return nil
	})
}

// queueArgs — аргументы очереди телеграмм.
func queueArgs() amqp.Table {
	return amqp.Table{
		"x-message-ttl": int32(messageTTL),
	}
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo(topo Topology) string {
	topo = topo.withDefaults()
	return fmt.Sprintf(`
  knxpanel RabbitMQ Topology:

    %s (topic)
    └── %s [routing: %s]
            Consumer: knxpanel (telegram feed)
            TTL: %dms
  `, topo.Exchange, topo.Queue, topo.RoutingKey, messageTTL)
}
