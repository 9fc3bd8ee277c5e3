package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/shaiso/Runbook/internal/domain"
	"github.com/shaiso/Runbook/internal/telemetry"
)

// cleanupRetention — сколько хранить записи завершённых задач.
const cleanupRetention = 24 * time.Hour

// WorkflowRunner выполняет workflow из файла.
// Реализуется engine.Engine.
type WorkflowRunner interface {
	ExecuteWorkflow(ctx context.Context, workflowPath string) (*domain.WorkflowExecution, error)
}

// UploadProcessor обрабатывает загрузку файла.
// Реализуется upload.Manager.
type UploadProcessor interface {
	ProcessUpload(ctx context.Context, uploadPath string) (*domain.UploadInfo, error)
}

// Orchestrator управляет выполнением задач.
//
// Для каждой принятой задачи:
//   - Создаёт запись TaskInfo в статусе PENDING
//   - Получает permit из глобального пула (один пул на оба вида задач,
//     размер — workflow.max_concurrent_workflows)
//   - Переводит задачу в RUNNING и делегирует движку или пайплайну
//   - Фиксирует исход (COMPLETED/FAILED) и освобождает permit
//
// Результат делегата возвращается вызывающему без изменений.
type Orchestrator struct {
	engine  WorkflowRunner
	uploads UploadProcessor

	registry  *Registry
	semaphore *semaphore.Weighted

	logger *slog.Logger
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Engine — движок workflow.
	Engine WorkflowRunner

	// Uploads — пайплайн загрузок.
	Uploads UploadProcessor

	// MaxConcurrent — размер пула permit'ов (default: 4).
	MaxConcurrent int

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		engine:    cfg.Engine,
		uploads:   cfg.Uploads,
		registry:  NewRegistry(),
		semaphore: semaphore.NewWeighted(int64(maxConcurrent)),
		logger:    logger,
	}
}

// SubmitWorkflow принимает и выполняет workflow-задачу.
//
// Блокируется до завершения выполнения; возвращает запись выполнения
// и ошибку делегата без изменений. Исход задачи в любом случае
// фиксируется в registry.
func (o *Orchestrator) SubmitWorkflow(ctx context.Context, workflowPath string) (*domain.WorkflowExecution, error) {
	task, err := o.beginTask(ctx, domain.TaskTypeWorkflow)
	if err != nil {
		return nil, err
	}
	defer o.semaphore.Release(1)

	execution, err := o.engine.ExecuteWorkflow(ctx, workflowPath)
	o.finishTask(task, err)
	return execution, err
}

// SubmitUpload принимает и выполняет upload-задачу.
//
// Upload проходит через тот же пул permit'ов, что и workflow-задачи.
func (o *Orchestrator) SubmitUpload(ctx context.Context, uploadPath string) (*domain.UploadInfo, error) {
	task, err := o.beginTask(ctx, domain.TaskTypeUpload)
	if err != nil {
		return nil, err
	}
	defer o.semaphore.Release(1)

	info, err := o.uploads.ProcessUpload(ctx, uploadPath)
	o.finishTask(task, err)
	return info, err
}

// beginTask регистрирует задачу, получает permit и переводит её в RUNNING.
//
// При ошибке получения permit (отмена context) задача помечается
// FAILED, permit не удерживается.
func (o *Orchestrator) beginTask(ctx context.Context, taskType domain.TaskType) (*domain.TaskInfo, error) {
	task := domain.NewTaskInfo(taskType)
	o.registry.Insert(task)

	o.logger.Info("task submitted", "task_id", task.ID, "type", taskType)

	if err := o.semaphore.Acquire(ctx, 1); err != nil {
		o.registry.Update(task.ID, func(t *domain.TaskInfo) {
			t.MarkFailed(err.Error())
		})
		telemetry.RecordTask(string(taskType), string(domain.TaskStatusFailed))
		return nil, fmt.Errorf("acquire permit: %w", err)
	}

	o.registry.Update(task.ID, func(t *domain.TaskInfo) {
		if t.Status.CanTransitionTo(domain.TaskStatusRunning) {
			t.MarkRunning()
		}
	})
	telemetry.TaskStarted()

	return task, nil
}

// finishTask фиксирует исход задачи в registry.
//
// Если задача уже в финальном статусе (например, отменена), исход
// делегата её не перезаписывает: статус движется только вперёд.
func (o *Orchestrator) finishTask(task *domain.TaskInfo, delegateErr error) {
	defer telemetry.TaskFinished()

	status := domain.TaskStatusCompleted
	o.registry.Update(task.ID, func(t *domain.TaskInfo) {
		if delegateErr != nil {
			status = domain.TaskStatusFailed
			if t.Status.CanTransitionTo(domain.TaskStatusFailed) {
				t.MarkFailed(delegateErr.Error())
			}
			return
		}
		if t.Status.CanTransitionTo(domain.TaskStatusCompleted) {
			t.MarkCompleted()
		}
	})
	telemetry.RecordTask(string(task.TaskType), string(status))

	if delegateErr != nil {
		o.logger.Error("task failed",
			"task_id", task.ID,
			"type", task.TaskType,
			"error", delegateErr,
		)
		return
	}
	o.logger.Info("task completed", "task_id", task.ID, "type", task.TaskType)
}

// GetTaskStatus возвращает копию записи задачи.
func (o *Orchestrator) GetTaskStatus(taskID uuid.UUID) (domain.TaskInfo, bool) {
	return o.registry.Get(taskID)
}

// ListActiveTasks возвращает snapshot всех отслеживаемых задач.
func (o *Orchestrator) ListActiveTasks() []domain.TaskInfo {
	return o.registry.List()
}

// CancelTask отменяет задачу.
//
// Отмена — advisory-запись в registry: уже запущенная команда шага
// не прерывается, выполнение доработает; финальный статус задачи при
// этом остаётся CANCELLED.
func (o *Orchestrator) CancelTask(taskID uuid.UUID) error {
	var finished bool
	ok := o.registry.Update(taskID, func(t *domain.TaskInfo) {
		if t.Status.IsTerminal() {
			finished = true
			return
		}
		t.MarkCancelled()
	})
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if finished {
		return fmt.Errorf("%w: %s", ErrTaskFinished, taskID)
	}

	o.logger.Info("task cancelled", "task_id", taskID)
	return nil
}

// CleanupCompletedTasks удаляет записи задач, завершившихся больше
// 24 часов назад. Возвращает количество удалённых.
func (o *Orchestrator) CleanupCompletedTasks() int {
	removed := o.registry.RemoveFinishedBefore(time.Now().UTC().Add(-cleanupRetention))
	o.logger.Info("cleaned up completed tasks", "removed", removed)
	return removed
}
