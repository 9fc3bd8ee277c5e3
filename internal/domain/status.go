package domain

// ExecutionStatus — статус выполнения workflow или отдельного шага.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → COMPLETED
//	                  ↘ FAILED
//	                  ↘ CANCELLED
//	PENDING → SKIPPED (если condition шага вычислился в false)
type ExecutionStatus string

const (
	// ExecutionStatusPending — выполнение создано, но ещё не началось.
	ExecutionStatusPending ExecutionStatus = "PENDING"

	// ExecutionStatusRunning — выполнение в процессе.
	ExecutionStatusRunning ExecutionStatus = "RUNNING"

	// ExecutionStatusCompleted — выполнение успешно завершено.
	ExecutionStatusCompleted ExecutionStatus = "COMPLETED"

	// ExecutionStatusFailed — выполнение завершилось с ошибкой.
	ExecutionStatusFailed ExecutionStatus = "FAILED"

	// ExecutionStatusCancelled — выполнение отменено.
	ExecutionStatusCancelled ExecutionStatus = "CANCELLED"

	// ExecutionStatusSkipped — шаг пропущен из-за condition.
	// Достигается напрямую из PENDING, минуя RUNNING.
	ExecutionStatusSkipped ExecutionStatus = "SKIPPED"
)

// IsTerminal возвращает true, если статус финальный.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed,
		ExecutionStatusCancelled, ExecutionStatusSkipped:
		return true
	default:
		return false
	}
}

// TaskStatus — статус задачи на уровне оркестратора.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → COMPLETED
//	                  ↘ FAILED
//	          (или) → CANCELLED
//
// Переходы строго монотонные — назад статус не двигается.
type TaskStatus string

const (
	// TaskStatusPending — задача создана, ожидает permit.
	TaskStatusPending TaskStatus = "PENDING"

	// TaskStatusRunning — задача выполняется.
	TaskStatusRunning TaskStatus = "RUNNING"

	// TaskStatusCompleted — задача успешно завершена.
	TaskStatusCompleted TaskStatus = "COMPLETED"

	// TaskStatusFailed — задача завершилась с ошибкой.
	TaskStatusFailed TaskStatus = "FAILED"

	// TaskStatusCancelled — задача отменена.
	TaskStatusCancelled TaskStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// rank — позиция статуса в state machine (для проверки монотонности).
func (s TaskStatus) rank() int {
	switch s {
	case TaskStatusPending:
		return 0
	case TaskStatusRunning:
		return 1
	default:
		return 2
	}
}

// CanTransitionTo проверяет, допустим ли переход в статус next.
// Допустимы только переходы вперёд по state machine.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	return next.rank() > s.rank()
}
