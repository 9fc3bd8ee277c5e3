package engine

import (
	"fmt"

	"github.com/shaiso/Runbook/internal/domain"
)

// stepMark — метка шага при обходе графа зависимостей.
type stepMark uint8

const (
	markUnvisited stepMark = iota // шаг ещё не посещён
	markVisiting                  // шаг в текущем пути обхода
	markVisited                   // шаг размещён в итоговом порядке
)

// SortSteps разрешает порядок выполнения шагов.
//
// Выполняет топологическую сортировку обходом в глубину: каждый шаг
// попадает в результат после всех своих транзитивных зависимостей.
// Независимые шаги упорядочиваются по порядку объявления.
//
// Шаги представлены ареной (исходный слайс) с lookup ID → индекс;
// результат содержит указатели в арену.
//
// Ошибки:
//   - ErrMissingDependency, если depends_on ссылается на несуществующий ID
//   - ErrCyclicDependency, если граф содержит цикл; в ошибке указан
//     шаг, на котором цикл замкнулся
func SortSteps(steps []domain.WorkflowStep) ([]*domain.WorkflowStep, error) {
	index := make(map[string]int, len(steps))
	for i := range steps {
		index[steps[i].ID] = i
	}

	marks := make([]stepMark, len(steps))
	order := make([]*domain.WorkflowStep, 0, len(steps))

	var visit func(i int) error
	visit = func(i int) error {
		step := &steps[i]

		switch marks[i] {
		case markVisiting:
			return NewValidationError(step.ID, "depends_on",
				fmt.Sprintf("circular dependency detected for step: %s", step.ID),
				ErrCyclicDependency)
		case markVisited:
			return nil
		}

		marks[i] = markVisiting

		for _, depID := range step.DependsOn {
			j, ok := index[depID]
			if !ok {
				return NewValidationError(step.ID, "depends_on",
					fmt.Sprintf("dependency step not found: %s", depID),
					ErrMissingDependency)
			}
			if err := visit(j); err != nil {
				return err
			}
		}

		marks[i] = markVisited
		order = append(order, step)
		return nil
	}

	for i := range steps {
		if marks[i] == markUnvisited {
			if err := visit(i); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}
