package engine

import "errors"

// Ошибки определения workflow.
var (
	// ErrWorkflowNotFound — файл workflow не существует.
	ErrWorkflowNotFound = errors.New("workflow file does not exist")

	// ErrEmptySteps — workflow не содержит шагов.
	ErrEmptySteps = errors.New("workflow has no steps")

	// ErrEmptyStepID — шаг не имеет ID.
	ErrEmptyStepID = errors.New("step has empty ID")

	// ErrDuplicateStepID — несколько шагов с одинаковым ID.
	ErrDuplicateStepID = errors.New("duplicate step ID")

	// ErrUnknownStepType — неизвестный тип шага.
	ErrUnknownStepType = errors.New("unknown step type")

	// ErrSelfDependency — шаг зависит от самого себя.
	ErrSelfDependency = errors.New("step depends on itself")
)

// Ошибки графа зависимостей.
var (
	// ErrMissingDependency — шаг зависит от несуществующего шага.
	ErrMissingDependency = errors.New("dependency step not found")

	// ErrCyclicDependency — обнаружен цикл в зависимостях.
	ErrCyclicDependency = errors.New("circular dependency detected")
)

// Ошибки выполнения шагов.
var (
	// ErrStepTimeout — команда шага не завершилась за таймаут.
	ErrStepTimeout = errors.New("step execution timed out")

	// ErrCommandFailed — команда шага завершилась с ненулевым кодом.
	ErrCommandFailed = errors.New("command failed")

	// ErrStepFailed — шаг упал после исчерпания всех попыток.
	ErrStepFailed = errors.New("step failed")
)

// ValidationError — ошибка валидации или разрешения графа с контекстом.
type ValidationError struct {
	StepID  string // ID шага, где произошла ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.StepID != "" {
		return "step " + e.StepID + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(stepID, field, message string, err error) *ValidationError {
	return &ValidationError{
		StepID:  stepID,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
