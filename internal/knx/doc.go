// Package knx моделирует внешнюю KNX-библиотеку, с которой работает панель.
//
// Структура:
//   - address.go — индивидуальные и групповые адреса KNX
//   - telegram.go — телеграмма и её отображение для UI
//   - wire.go     — JSON-формат телеграмм, приходящих из feed'ов (AMQP, MQTT)
//   - queue.go    — TelegramQueue: очередь и реестр callback'ов
//   - gateway.go  — Gateway: версия, состояние соединения, текущий адрес
//
// Сам протокол KNX здесь не реализован: телеграммы приходят уже
// декодированными от внешнего шлюза.
package knx
