// Package schedule запускает периодические задачи приложения.
package schedule

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Task периодическая задача; ошибка логируется и не останавливает расписание
type Task func(ctx context.Context) error

// Scheduler обёртка над gocron с логированием задач
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *zap.SugaredLogger
	jobs      map[string]uuid.UUID
}

// New создаёт планировщик
func New(logger *zap.SugaredLogger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.Wrap(err, "create scheduler")
	}
	return &Scheduler{scheduler: s, logger: logger, jobs: make(map[string]uuid.UUID)}, nil
}

// Every регистрирует задачу с фиксированным интервалом.
// Запуски не накладываются: пока задача выполняется, следующий переносится.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) error {
	if interval <= 0 {
		return errors.Errorf("invalid interval %s for job %s", interval, name)
	}
	run := func(ctx context.Context) {
		started := time.Now()
		if err := task(ctx); err != nil {
			s.logger.Warnw("job failed", "job", name, "error", err)
			return
		}
		s.logger.Debugw("job done", "job", name, "took", time.Since(started))
	}

	j, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(run),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return errors.Wrapf(err, "create job %s", name)
	}
	s.jobs[name] = j.ID()
	s.logger.Infow("job scheduled", "job", name, "id", j.ID(), "interval", interval)
	return nil
}

// Start запускает выполнение задач
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Shutdown останавливает задачи и ждёт завершения текущих
func (s *Scheduler) Shutdown() error {
	s.logger.Info("Shutting down scheduler")
	return s.scheduler.Shutdown()
}
