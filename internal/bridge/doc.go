// Package bridge — мост между KNX-шлюзом и UI панели.
//
// Команды WebSocket API:
//   - panel/info                — снимок состояния шлюза (версия, соединение, адрес)
//   - panel/subscribe_telegrams — поток телеграмм до отписки или закрытия соединения
//   - panel/group_monitor_info  — последние телеграммы для группового монитора
//
// Мост ничего не буферизует и не переупорядочивает: каждая телеграмма,
// отданная шлюзом, сразу уходит в очередь отправки соединения.
package bridge
