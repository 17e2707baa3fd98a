// Package history хранит недавние телеграммы для группового монитора.
//
// Структура:
//   - buffer.go   — Buffer: кольцевой буфер в памяти
//   - recorder.go — Recorder: асинхронная запись телеграмм в БД пачками
//   - pruner.go   — Pruner: удаление старых записей по cron-расписанию
//
// Buffer и Recorder подключаются к knx.TelegramQueue как обычные callback'и
// и никогда не блокируют раздачу телеграмм.
package history
