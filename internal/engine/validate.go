package engine

import (
	"fmt"

	"github.com/shaiso/Runbook/internal/domain"
)

// Validate выполняет полную валидацию определения workflow.
//
// Проверяет:
//   - Наличие шагов
//   - Непустые и уникальные ID шагов
//   - Корректность типов шагов
//   - Отсутствие self-dependency
//
// Существование шагов из depends_on и отсутствие циклов проверяет
// SortSteps — до запуска первого шага.
func Validate(w *domain.Workflow) error {
	if w == nil || len(w.Steps) == 0 {
		return ErrEmptySteps
	}

	stepIDs := make(map[string]bool, len(w.Steps))

	for i := range w.Steps {
		step := &w.Steps[i]

		if step.ID == "" {
			return NewValidationError("", "id", "step has empty ID", ErrEmptyStepID)
		}

		if stepIDs[step.ID] {
			return NewValidationError(step.ID, "id",
				fmt.Sprintf("duplicate step ID: %s", step.ID), ErrDuplicateStepID)
		}
		stepIDs[step.ID] = true

		if !step.StepType.IsValid() {
			return NewValidationError(step.ID, "step_type",
				fmt.Sprintf("unknown step type: %s", step.StepType), ErrUnknownStepType)
		}

		for _, dep := range step.DependsOn {
			if dep == step.ID {
				return NewValidationError(step.ID, "depends_on",
					"step depends on itself", ErrSelfDependency)
			}
		}
	}

	return nil
}
