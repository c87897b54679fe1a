// Package scheduler запускает фоновые задачи по расписанию cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron"

	"github.com/magabrotheeeer/staffdesk/internal/lib/sl"
	"github.com/magabrotheeeer/staffdesk/internal/metrics"
	"github.com/magabrotheeeer/staffdesk/internal/services/upload"
)

// Reaper удаляет неиспользуемые загрузки.
type Reaper interface {
	DeleteOrphans(ctx context.Context) (int, error)
}

// Scheduler запускает очистку загрузок по расписанию.
type Scheduler struct {
	cron    *cron.Cron
	reaper  Reaper
	timeout time.Duration
	log     *slog.Logger
}

// New создаёт планировщик в часовом поясе loc. timeout ограничивает один запуск.
func New(log *slog.Logger, reaper Reaper, loc *time.Location, timeout time.Duration) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Scheduler{
		cron:    cron.NewWithLocation(loc),
		reaper:  reaper,
		timeout: timeout,
		log:     log,
	}
}

// Schedule регистрирует очистку по выражению cron с полем секунд, например "0 59 23 * * *".
func (s *Scheduler) Schedule(spec string) error {
	const op = "scheduler.Schedule"

	if err := s.cron.AddFunc(spec, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("orphan upload cleanup scheduled", slog.String("spec", spec))
	return nil
}

// Start запускает планировщик в отдельной горутине.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик. Уже начатый запуск не прерывается.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunOnce выполняет одну очистку и возвращает число удалённых записей
// или upload.ReapFailed. Ошибки и паники только логируются.
func (s *Scheduler) RunOnce() (deleted int) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("orphan upload cleanup panicked", slog.Any("panic", rec))
			metrics.ObserveReaper("error", 0)
			deleted = upload.ReapFailed
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.reaper.DeleteOrphans(ctx)
	if err != nil {
		s.log.Error("failed to delete orphan uploads", sl.Err(err), slog.Int("deleted", max(n, 0)))
		metrics.ObserveReaper("error", max(n, 0))
		return upload.ReapFailed
	}

	s.log.Info(fmt.Sprintf("successfully deleted %d file(s)", n), slog.Duration("took", time.Since(start)))
	metrics.ObserveReaper("success", n)
	return n
}
