package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Runbook/internal/domain"
)

const (
	// tickInterval — период проверки расписаний.
	tickInterval = time.Second

	// cleanupInterval — период очистки записей завершённых задач.
	cleanupInterval = time.Hour
)

// WorkflowSubmitter принимает workflow-задачу на выполнение.
// Реализуется orchestrator.Orchestrator.
type WorkflowSubmitter interface {
	SubmitWorkflow(ctx context.Context, workflowPath string) (*domain.WorkflowExecution, error)
	CleanupCompletedTasks() int
}

// entry — расписание вместе со временем следующего запуска.
type entry struct {
	schedule domain.Schedule
	nextDue  time.Time
}

// Scheduler запускает workflow по cron-расписаниям из конфигурации.
type Scheduler struct {
	orchestrator WorkflowSubmitter
	entries      []entry
	logger       *slog.Logger

	wg sync.WaitGroup
}

// Config — конфигурация Scheduler.
type Config struct {
	// Orchestrator — получатель due-запусков.
	Orchestrator WorkflowSubmitter

	// Schedules — расписания из конфигурации.
	Schedules []domain.Schedule

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Scheduler и вычисляет первое время запуска
// для каждого enabled-расписания. Расписания с невалидным
// cron-выражением пропускаются с предупреждением.
func New(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := time.Now()
	entries := make([]entry, 0, len(cfg.Schedules))
	for _, sched := range cfg.Schedules {
		if !sched.Enabled {
			continue
		}
		nextDue, err := CalculateNextDue(&sched, now)
		if err != nil {
			logger.Warn("skipping schedule with invalid cron expression",
				"schedule", sched.Name,
				"cron_expr", sched.CronExpr,
				"error", err,
			)
			continue
		}
		entries = append(entries, entry{schedule: sched, nextDue: nextDue})
		logger.Info("schedule registered",
			"schedule", sched.Name,
			"workflow", sched.WorkflowPath,
			"next_due", nextDue,
		)
	}

	return &Scheduler{
		orchestrator: cfg.Orchestrator,
		entries:      entries,
		logger:       logger,
	}
}

// Run выполняет цикл планировщика до отмены context.
// Дожидается завершения всех запущенных workflow перед возвратом.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()

	s.logger.Info("scheduler started", "schedules", len(s.entries))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping")
			s.wg.Wait()
			return
		case now := <-ticker.C:
			s.Tick(ctx, now)
		case <-cleanup.C:
			s.orchestrator.CleanupCompletedTasks()
		}
	}
}

// Tick запускает все расписания, у которых наступило время.
//
// Каждый due-запуск уходит в отдельную goroutine: orchestrator
// блокируется до завершения workflow, а тик должен оставаться
// коротким. Ошибка одного расписания не влияет на остальные.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	for i := range s.entries {
		e := &s.entries[i]
		if e.nextDue.After(now) {
			continue
		}

		s.logger.Info("schedule due",
			"schedule", e.schedule.Name,
			"workflow", e.schedule.WorkflowPath,
		)

		workflowPath := e.schedule.WorkflowPath
		scheduleName := e.schedule.Name
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if _, err := s.orchestrator.SubmitWorkflow(ctx, workflowPath); err != nil {
				s.logger.Error("scheduled workflow failed",
					"schedule", scheduleName,
					"workflow", workflowPath,
					"error", err,
				)
			}
		}()

		nextDue, err := CalculateNextDue(&e.schedule, now)
		if err != nil {
			// Выражение было валидно при регистрации; на всякий случай
			// отключаем расписание, чтобы не зациклиться на текущем тике.
			s.logger.Error("failed to calculate next due, disabling schedule",
				"schedule", scheduleName,
				"error", err,
			)
			e.nextDue = now.Add(100 * 365 * 24 * time.Hour)
			continue
		}
		e.nextDue = nextDue
	}
}
