package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskInfo — обёртка оркестратора вокруг любой принятой единицы работы
// (workflow-запуск или upload).
//
// TaskInfo создаётся при приёме задачи, мутируется оркестратором по
// ходу жизненного цикла и удаляется периодической очисткой, когда
// с момента завершения прошло больше retention-окна.
type TaskInfo struct {
	// ID — уникальный идентификатор задачи.
	ID uuid.UUID `json:"id"`

	// TaskType — вид задачи: upload, workflow, system.
	TaskType TaskType `json:"task_type"`

	// Status — текущий статус задачи.
	Status TaskStatus `json:"status"`

	// CreatedAt — время приёма задачи.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt — время получения permit и начала выполнения.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt — время завершения (в любом финальном статусе).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ErrorMessage — текст ошибки при FAILED.
	ErrorMessage string `json:"error_message,omitempty"`
}

// TaskType — вид задачи оркестратора.
type TaskType string

const (
	// TaskTypeUpload — обработка загрузки файла.
	TaskTypeUpload TaskType = "upload"

	// TaskTypeWorkflow — выполнение workflow.
	TaskTypeWorkflow TaskType = "workflow"

	// TaskTypeSystem — служебная задача.
	TaskTypeSystem TaskType = "system"
)

// NewTaskInfo создаёт TaskInfo в статусе PENDING.
func NewTaskInfo(taskType TaskType) *TaskInfo {
	return &TaskInfo{
		ID:        uuid.New(),
		TaskType:  taskType,
		Status:    TaskStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Duration возвращает продолжительность выполнения задачи.
func (t *TaskInfo) Duration() time.Duration {
	if t.StartedAt == nil || t.CompletedAt == nil {
		return 0
	}
	return t.CompletedAt.Sub(*t.StartedAt)
}

// IsFinished возвращает true, если задача завершена.
func (t *TaskInfo) IsFinished() bool {
	return t.Status.IsTerminal()
}

// MarkRunning переводит задачу в статус RUNNING.
func (t *TaskInfo) MarkRunning() {
	now := time.Now().UTC()
	t.Status = TaskStatusRunning
	t.StartedAt = &now
}

// MarkCompleted переводит задачу в статус COMPLETED.
func (t *TaskInfo) MarkCompleted() {
	now := time.Now().UTC()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
}

// MarkFailed переводит задачу в статус FAILED с ошибкой.
func (t *TaskInfo) MarkFailed(errMsg string) {
	now := time.Now().UTC()
	t.Status = TaskStatusFailed
	t.CompletedAt = &now
	t.ErrorMessage = errMsg
}

// MarkCancelled переводит задачу в статус CANCELLED.
func (t *TaskInfo) MarkCancelled() {
	now := time.Now().UTC()
	t.Status = TaskStatusCancelled
	t.CompletedAt = &now
}
