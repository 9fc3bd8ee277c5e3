// Package orchestrator — точка входа для выполнения задач.
//
// Orchestrator принимает задачи (workflow-запуски и uploads),
// ограничивает их параллелизм глобальным пулом permit'ов и ведёт
// учёт жизненного цикла каждой задачи в Registry.
//
// Orchestrator — единственный вызывающий движка workflow и пайплайна
// загрузок; делегаты работают в том же процессе.
package orchestrator
