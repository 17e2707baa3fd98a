// Package mq — AMQP-feed телеграмм через RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, очереди и привязки
//   - publisher.go  — публикация телеграмм (используется CLI)
//   - consumer.go   — потребление сообщений из очереди
//   - feed.go       — обработчик, передающий телеграммы в knx.TelegramQueue
//
// Тип сообщений:
//   - knx.telegram — телеграмма в wire-формате knx.WireTelegram
//
// Topology по умолчанию:
//   - knx.telegrams (topic) → knxpanel.telegrams [routing: telegram.#]
package mq
