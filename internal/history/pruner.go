package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Deleter удаляет записи старше cutoff.
type Deleter interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pruner периодически удаляет историю старше Retention.
type Pruner struct {
	deleter   Deleter
	logger    *slog.Logger
	retention time.Duration
	schedule  string
	now       func() time.Time

	cron *cron.Cron
}

// PrunerConfig — конфигурация Pruner.
type PrunerConfig struct {
	Deleter Deleter
	Logger  *slog.Logger

	// Retention — сколько хранить телеграммы.
	Retention time.Duration

	// Schedule — cron-выражение (5 полей или @hourly, @every 10m и т.п.).
	Schedule string
}

// ValidateSchedule проверяет cron-выражение.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", spec, err)
	}
	return nil
}

// NewPruner создаёт Pruner. Расписание проверяется сразу.
func NewPruner(cfg PrunerConfig) (*Pruner, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "@hourly"
	}
	if err := ValidateSchedule(cfg.Schedule); err != nil {
		return nil, err
	}
	if cfg.Retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %s", cfg.Retention)
	}

	return &Pruner{
		deleter:   cfg.Deleter,
		logger:    cfg.Logger,
		retention: cfg.Retention,
		schedule:  cfg.Schedule,
		now:       time.Now,
	}, nil
}

// Prune удаляет устаревшие записи один раз.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.retention)

	deleted, err := p.deleter.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}

	p.logger.Info("telegram history pruned", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}

// Start запускает cron. Блокируется до отмены контекста.
func (p *Pruner) Start(ctx context.Context) error {
	p.cron = cron.New()

	_, err := p.cron.AddFunc(p.schedule, func() {
		pruneCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if _, err := p.Prune(pruneCtx); err != nil {
			p.logger.Error("prune failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule prune: %w", err)
	}

	p.cron.Start()
	p.logger.Info("history pruner started", "schedule", p.schedule, "retention", p.retention)

	<-ctx.Done()

	// Ждём завершения уже запущенной очистки
	<-p.cron.Stop().Done()
	return ctx.Err()
}
