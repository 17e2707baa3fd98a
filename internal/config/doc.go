// Package config — конфигурация knxpanel.
//
// Порядок применения:
//  1. значения по умолчанию (Default)
//  2. .env (LoadDotEnv, отсутствие файла не ошибка)
//  3. YAML-файл (KNXPANEL_CONFIG или knxpanel.yaml), ${VAR} раскрываются
//  4. переменные окружения (KNXPANEL_ADDR, AMQP_URL, MQTT_BROKER, DB_URL,
//     KNX_FEED, KNX_INDIVIDUAL_ADDRESS, KNXPANEL_PANEL_JS)
//  5. Validate
package config
