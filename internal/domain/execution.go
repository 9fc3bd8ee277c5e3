package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowExecution — один запуск workflow.
//
// Создаётся движком в начале запуска, принадлежит движку до конца
// выполнения и один раз сохраняется на диск как неизменяемая запись
// (<workflow_dir>/executions/<id>.json).
type WorkflowExecution struct {
	// ID — уникальный идентификатор выполнения.
	ID uuid.UUID `json:"id"`

	// WorkflowID — ссылка на выполняемый workflow.
	WorkflowID uuid.UUID `json:"workflow_id"`

	// Status — текущий статус выполнения.
	Status ExecutionStatus `json:"status"`

	// StartedAt — время начала выполнения.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt — время завершения. Nil, пока выполнение идёт.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// StepsExecuted — записи по шагам в порядке фактического выполнения.
	StepsExecuted []StepExecution `json:"steps_executed"`

	// Variables — копия переменных workflow на момент запуска.
	// Во время выполнения только читается.
	Variables map[string]string `json:"variables,omitempty"`

	// ErrorMessage — текст ошибки упавшего шага (при FAILED).
	ErrorMessage string `json:"error_message,omitempty"`
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если выполнение ещё не завершено.
func (e *WorkflowExecution) Duration() time.Duration {
	if e.CompletedAt == nil {
		return 0
	}
	return e.CompletedAt.Sub(e.StartedAt)
}

// IsFinished возвращает true, если выполнение завершено.
func (e *WorkflowExecution) IsFinished() bool {
	return e.Status.IsTerminal()
}

// MarkCompleted переводит выполнение в статус COMPLETED.
func (e *WorkflowExecution) MarkCompleted() {
	now := time.Now().UTC()
	e.Status = ExecutionStatusCompleted
	e.CompletedAt = &now
}

// MarkFailed переводит выполнение в статус FAILED с ошибкой.
func (e *WorkflowExecution) MarkFailed(errMsg string) {
	now := time.Now().UTC()
	e.Status = ExecutionStatusFailed
	e.CompletedAt = &now
	e.ErrorMessage = errMsg
}

// StepExecution — результат выполнения одного шага.
type StepExecution struct {
	// StepID — ID шага из определения workflow.
	StepID string `json:"step_id"`

	// Status — итоговый статус шага.
	Status ExecutionStatus `json:"status"`

	// StartedAt — время начала выполнения шага.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt — время завершения шага.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Output — захваченный stdout при успехе.
	Output string `json:"output,omitempty"`

	// ErrorMessage — текст последней ошибки при неудаче.
	ErrorMessage string `json:"error_message,omitempty"`

	// RetryCount — количество израсходованных повторных попыток.
	// Никогда не превышает эффективный retry-лимит шага.
	RetryCount uint32 `json:"retry_count"`
}

// Duration возвращает продолжительность выполнения шага.
func (s *StepExecution) Duration() time.Duration {
	if s.CompletedAt == nil {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}
