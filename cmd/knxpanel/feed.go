package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/knxpanel/internal/config"
	"github.com/shaiso/knxpanel/internal/knx"
	"github.com/shaiso/knxpanel/internal/mq"
	"github.com/shaiso/knxpanel/internal/mqtt"
	"github.com/shaiso/knxpanel/internal/telemetry"
)

// startFeed подключает источник телеграмм и привязывает его к шлюзу.
// Возвращает функцию остановки.
func startFeed(ctx context.Context, cfg config.Config, gateway *knx.Gateway, logger *slog.Logger) (func(), error) {
	switch cfg.KNX.Feed {
	case config.FeedAMQP:
		return startAMQPFeed(ctx, cfg.AMQP, gateway, telemetry.WithFeed(logger, config.FeedAMQP))
	case config.FeedMQTT:
		return startMQTTFeed(cfg.MQTT, gateway, logger)
	default:
		logger.Warn("no telegram feed configured, gateway stays disconnected")
		return func() {}, nil
	}
}

func startAMQPFeed(ctx context.Context, cfg config.AMQPConfig, gateway *knx.Gateway, logger *slog.Logger) (func(), error) {
	topo := mq.Topology{
		Exchange:   mq.Exchange(cfg.Exchange),
		Queue:      mq.Queue(cfg.Queue),
		RoutingKey: mq.RoutingKey(cfg.RoutingKey),
	}

	conn, err := mq.NewConnection(mq.ConnectionConfig{
		URL:    cfg.URL,
		Logger: logger,
		OnReconnect: func(c *mq.Connection) error {
			return mq.SetupTopology(context.Background(), c, topo)
		},
	})
	if err != nil {
		return nil, err
	}

	if err := mq.SetupTopology(ctx, conn, topo); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setup topology: %w", err)
	}
	logger.Debug(mq.TopologyInfo(topo))

	gateway.AttachLink(conn)

	queueName := cfg.Queue
	if queueName == "" {
		queueName = string(mq.QueueTelegrams)
	}

	consumer := mq.NewConsumer(conn, logger, mq.ConsumerConfig{
		Queue:    queueName,
		Handler:  mq.TelegramHandler(gateway.TelegramQueue(), logger),
		Prefetch: cfg.Prefetch,
	})
	go consumer.Start(ctx)

	return func() {
		consumer.Stop()
		conn.Close()
	}, nil
}

func startMQTTFeed(cfg config.MQTTConfig, gateway *knx.Gateway, logger *slog.Logger) (func(), error) {
	client := mqtt.NewClient(mqtt.Config{
		Broker:   cfg.Broker,
		Topic:    cfg.Topic,
		ClientID: cfg.ClientID,
		Username: cfg.Username,
		Password: cfg.Password,
		QoS:      cfg.QoS,
		Queue:    gateway.TelegramQueue(),
		Logger:   logger,
	})

	if err := client.Connect(); err != nil {
		return nil, err
	}

	gateway.AttachLink(client)
	return client.Close, nil
}
