// Package engine содержит движок выполнения workflow.
//
// Включает:
//   - validate.go  — валидация определения workflow
//   - scheduler.go — разрешение порядка выполнения (топологическая сортировка)
//   - condition.go — вычисление condition шагов ($var-подстановка)
//   - executor.go  — выполнение одного шага (retry, timeout, захват вывода)
//   - engine.go    — загрузка определения, прогон шагов, запись результата
//
// Движок выполняет шаги строго последовательно в разрешённом порядке;
// параллелизм существует только между разными выполнениями и
// контролируется оркестратором.
package engine
