// Package cli реализует инструмент командной строки knxpanel.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с сервером knxpanel.
// Читает данные через HTTP API и командный WebSocket-канал панели,
// а тестовые телеграммы публикует напрямую в RabbitMQ.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для /api/panels и /api/telegrams. Парсит ответы
// (DataResponse, ListResponse, ErrorResponse) и обрабатывает ошибки.
//
//	client := cli.NewClient("http://localhost:8123")
//	panels, err := client.ListPanels()
//
// ## WSClient
//
// Клиент командного канала /api/websocket: panel/info,
// panel/group_monitor_info и подписка panel/subscribe_telegrams.
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: knxpanel-cli monitor --json | jq .
//
// ## Commands
//
//   - info: состояние шлюза
//   - monitor: живой поток телеграмм
//   - panels: list, show
//   - telegrams: последние телеграммы из истории
//   - publish: отправка телеграммы в AMQP-feed
//
// Каждая команда создаётся фабричной функцией (NewInfoCmd и т.д.),
// принимающей clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
