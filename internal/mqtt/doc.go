// Package mqtt — MQTT-feed телеграмм.
//
// Шлюз KNX публикует телеграммы в топики knx/telegram/<группа> в формате
// knx.WireTelegram. Client подписывается на них и кладёт телеграммы
// в knx.TelegramQueue. Переподключение выполняет paho.
package mqtt
