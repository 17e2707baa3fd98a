// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go          — Handler с DI (реестр панелей, история, WebSocket, logger)
//   - routes.go           — регистрация маршрутов
//   - middleware.go       — middleware (logging, recovery)
//   - response.go         — унифицированные JSON-ответы и обработка ошибок
//   - dto.go              — Data Transfer Objects (response)
//   - panel_handler.go    — обработчики для /api/panels
//   - telegram_handler.go — обработчики для /api/telegrams
//
// Командный канал панели (/api/websocket) обслуживает wsapi.Server.
package api
