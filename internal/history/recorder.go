package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/knxpanel/internal/knx"
	"github.com/shaiso/knxpanel/internal/telemetry"
)

// BatchWriter сохраняет пачку телеграмм.
type BatchWriter interface {
	InsertBatch(ctx context.Context, telegrams []knx.Telegram) error
}

// Recorder пишет телеграммы в БД в отдельной горутине.
//
// Add не блокируется: при переполнении очереди телеграмма отбрасывается.
type Recorder struct {
	writer        BatchWriter
	logger        *slog.Logger
	queue         chan knx.Telegram
	batchSize     int
	flushInterval time.Duration
}

// RecorderConfig — конфигурация Recorder.
type RecorderConfig struct {
	Writer        BatchWriter
	Logger        *slog.Logger
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
}

// NewRecorder создаёт Recorder.
func NewRecorder(cfg RecorderConfig) *Recorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	return &Recorder{
		writer:        cfg.Writer,
		logger:        cfg.Logger,
		queue:         make(chan knx.Telegram, cfg.QueueSize),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
	}
}

// Add ставит телеграмму в очередь записи. Подходит как knx.TelegramCallback.
func (r *Recorder) Add(t knx.Telegram) {
	select {
	case r.queue <- t:
	default:
		telemetry.HistoryWrites.WithLabelValues("dropped").Inc()
	}
}

// Run пишет телеграммы пачками до отмены контекста, затем сбрасывает остаток.
func (r *Recorder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	batch := make([]knx.Telegram, 0, r.batchSize)

	for {
		select {
		case <-ctx.Done():
			// Дописываем то, что уже в очереди
		drain:
			for {
				select {
				case t := <-r.queue:
					batch = append(batch, t)
				default:
					break drain
				}
			}
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			r.flush(flushCtx, batch)
			cancel()
			return ctx.Err()

		case t := <-r.queue:
			batch = append(batch, t)
			if len(batch) >= r.batchSize {
				r.flush(ctx, batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (r *Recorder) flush(ctx context.Context, batch []knx.Telegram) {
	if len(batch) == 0 {
		return
	}

	if err := r.writer.InsertBatch(ctx, batch); err != nil {
		telemetry.HistoryWrites.WithLabelValues("error").Add(float64(len(batch)))
		r.logger.Error("failed to write telegram history", "count", len(batch), "error", err)
		return
	}

	telemetry.HistoryWrites.WithLabelValues("ok").Add(float64(len(batch)))
	r.logger.Debug("telegram history written", "count", len(batch))
}
