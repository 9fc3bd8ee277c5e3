package engine

import "strings"

// EvaluateCondition вычисляет condition шага.
//
// Семантика намеренно минимальная, это не язык выражений:
//   - Условие без маркеров "$" всегда проходит.
//   - Иначе каждое вхождение $name заменяется значением переменной name,
//     и результат сравнивается со строкой "true" без учёта регистра.
//     Всё, что не "true" — пропуск шага.
//
// Булевой логики (&&, ||, отрицания) нет.
func EvaluateCondition(condition string, variables map[string]string) bool {
	if !strings.Contains(condition, "$") {
		return true
	}

	evaluated := condition
	for key, value := range variables {
		evaluated = strings.ReplaceAll(evaluated, "$"+key, value)
	}

	return strings.ToLower(evaluated) == "true"
}
