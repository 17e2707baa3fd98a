// Package telemetry обеспечивает наблюдаемость knxpanel.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики WebSocket API, подписок и feed'ов
//
// Метрики экспортируются на /metrics endpoint сервера панели.
package telemetry
