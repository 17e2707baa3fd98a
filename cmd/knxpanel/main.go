// knxpanel — backend админ-панели KNX.
//
// Сервер:
//   - Отдаёт JS панели по статическому пути и регистрирует панель в сайдбаре (только admin)
//   - Обслуживает командный канал /api/websocket: panel/info, panel/subscribe_telegrams,
//     panel/group_monitor_info
//   - Получает телеграммы из AMQP или MQTT feed'а
//   - Хранит последние телеграммы в памяти и, если задан history.database_url, в Postgres
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/knxpanel/internal/api"
	"github.com/shaiso/knxpanel/internal/bridge"
	"github.com/shaiso/knxpanel/internal/config"
	"github.com/shaiso/knxpanel/internal/history"
	"github.com/shaiso/knxpanel/internal/host"
	"github.com/shaiso/knxpanel/internal/knx"
	"github.com/shaiso/knxpanel/internal/panel"
	"github.com/shaiso/knxpanel/internal/repo"
	"github.com/shaiso/knxpanel/internal/telemetry"
	"github.com/shaiso/knxpanel/internal/wsapi"
)

var (
	startTime   = time.Now()
	healthTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "knxpanel_healthz_requests_total",
		Help: "Total /healthz requests",
	})
)

func main() {
	// .env читается до логгера: LOG_LEVEL и LOG_FORMAT могут быть заданы там
	dotEnvErr := config.LoadDotEnv(".env")

	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting knxpanel", "version", knx.Version, "build_id", panel.BuildID())

	if dotEnvErr != nil {
		logger.Warn("failed to load .env", "error", dotEnvErr)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Шлюз и очередь телеграмм
	queue := knx.NewTelegramQueue(cfg.KNX.QueueSize, logger)
	gateway := knx.NewGateway(knx.GatewayConfig{
		Version:           knx.Version,
		IndividualAddress: cfg.IndividualAddress(),
		Queue:             queue,
	})

	// История: кольцевой буфер всегда, Postgres — по конфигурации
	buffer := history.NewBuffer(cfg.History.BufferSize)
	queue.RegisterTelegramCallback(buffer.Add)

	var recent bridge.History = buffer
	if cfg.History.DatabaseURL != "" {
		telegramRepo, closeDB, err := startHistory(ctx, cfg.History, queue, logger)
		if err != nil {
			logger.Error("failed to start telegram history", "error", err)
			os.Exit(1)
		}
		defer closeDB()
		recent = telegramRepo
	}

	// Feed телеграмм
	stopFeed, err := startFeed(ctx, cfg, gateway, logger)
	if err != nil {
		logger.Error("failed to start telegram feed", "feed", cfg.KNX.Feed, "error", err)
		os.Exit(1)
	}
	defer stopFeed()

	go queue.Run(ctx)

	mux := http.NewServeMux()
	hostServer := host.New(mux, logger)

	// Командный канал
	registry := wsapi.NewRegistry()
	b := bridge.New(bridge.Config{
		Gateway: gateway,
		History: recent,
		Logger:  logger,
	})
	if err := b.Register(registry); err != nil {
		logger.Error("failed to register commands", "error", err)
		os.Exit(1)
	}

	wsServer := wsapi.NewServer(wsapi.ServerConfig{
		Registry:       registry,
		Logger:         logger,
		SendBuffer:     cfg.Server.SendBuffer,
		OriginPatterns: cfg.Server.OriginPatterns,
	})

	handler := api.NewHandler(api.Config{
		Panels:    hostServer,
		History:   recent,
		WebSocket: wsServer,
		Logger:    logger,
	})

	// Health и metrics
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		healthTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s connected=%t", time.Since(startTime).Round(time.Second), gateway.Connected())
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	// Регистрация панели после фиксированных маршрутов: конфликт — фатальная ошибка
	registration, err := panel.Register(hostServer, cfg.Server.StaticPath, cfg.Server.PanelJS)
	if err != nil {
		logger.Error("failed to register panel", "error", err)
		os.Exit(1)
	}
	defer registration.Close()
	logger.Info("panel registered",
		"url_path", registration.URLPath(),
		"static_path", cfg.Server.StaticPath,
		"js_url", panel.JSURL(cfg.Server.StaticPath),
	)

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}

// startHistory подключает Postgres, запускает запись и очистку истории.
func startHistory(ctx context.Context, cfg config.HistoryConfig, queue *knx.TelegramQueue, logger *slog.Logger) (*repo.TelegramRepo, func(), error) {
	pool, err := repo.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to database")

	telegramRepo := repo.NewTelegramRepo(pool)
	if err := telegramRepo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	recorder := history.NewRecorder(history.RecorderConfig{
		Writer: telegramRepo,
		Logger: logger,
	})
	queue.RegisterTelegramCallback(recorder.Add)

	pruner, err := history.NewPruner(history.PrunerConfig{
		Deleter:   telegramRepo,
		Logger:    logger,
		Retention: cfg.Retention,
		Schedule:  cfg.PruneSchedule,
	})
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	recorderDone := make(chan struct{})
	go func() {
		defer close(recorderDone)
		recorder.Run(ctx)
	}()
	go pruner.Start(ctx)

	// Пул закрывается после того, как recorder сбросит хвост
	return telegramRepo, func() {
		<-recorderDone
		pool.Close()
	}, nil
}
