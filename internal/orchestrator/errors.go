package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrTaskNotFound — задача не найдена в registry.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskFinished — задача уже в финальном статусе.
	ErrTaskFinished = errors.New("task already finished")
)
