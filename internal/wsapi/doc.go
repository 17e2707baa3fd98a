// Package wsapi — командный WebSocket-канал между UI панели и сервером.
//
// Структура:
//   - messages.go   — форматы входящих и исходящих сообщений, коды ошибок
//   - connection.go — Connection: очередь отправки и таблица подписок
//   - registry.go   — Registry: реестр команд и диспетчеризация
//   - server.go     — Server: http.Handler поверх github.com/coder/websocket
//
// Протокол:
//
//	→ {"id": 1, "type": "ping"}
//	← {"id": 1, "type": "pong"}
//	→ {"id": 2, "type": "panel/subscribe_telegrams"}
//	← {"id": 2, "type": "result", "success": true}
//	← {"id": 2, "type": "event", "event": {...}}
//	→ {"id": 3, "type": "unsubscribe_events", "subscription": 2}
//	← {"id": 3, "type": "result", "success": true}
//
// id должен строго возрастать в пределах соединения. Команды одного
// соединения выполняются последовательно в цикле чтения.
package wsapi
