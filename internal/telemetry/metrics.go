package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики регистрируются в prometheus.DefaultRegisterer и отдаются через promhttp.Handler.
var (
	// WSConnections — количество открытых WebSocket-соединений.
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "knxpanel_ws_connections",
		Help: "Open websocket connections",
	})

	// WSCommands — обработанные команды клиентов по типу и результату.
	WSCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knxpanel_ws_commands_total",
		Help: "Websocket commands handled, by type and result",
	}, []string{"type", "result"})

	// WSDroppedMessages — исходящие сообщения, отброшенные из-за переполнения очереди.
	WSDroppedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "knxpanel_ws_dropped_messages_total",
		Help: "Outbound websocket messages dropped because the send queue was full",
	})

	// SubscriptionsActive — живые подписки на телеграммы.
	SubscriptionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "knxpanel_subscriptions_active",
		Help: "Live telegram subscriptions across all connections",
	})

	// TelegramsReceived — телеграммы, доставленные в TelegramQueue.
	TelegramsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "knxpanel_telegrams_received_total",
		Help: "Telegrams dispatched by the telegram queue",
	})

	// TelegramsForwarded — телеграммы, отправленные клиентам.
	TelegramsForwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "knxpanel_telegrams_forwarded_total",
		Help: "Telegram events forwarded to websocket clients",
	})

	// FeedMessages — сообщения feed'ов по источнику и результату разбора.
	FeedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knxpanel_feed_messages_total",
		Help: "Messages received from telegram feeds, by feed and result",
	}, []string{"feed", "result"})

	// HistoryWrites — записи телеграмм в БД по результату.
	HistoryWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "knxpanel_history_writes_total",
		Help: "Telegram history writes, by result",
	}, []string{"result"})
)
