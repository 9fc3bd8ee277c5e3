// Package scheduler реализует запуск workflow по расписанию.
//
// Scheduler держит расписания из конфигурации в памяти, раз в тик
// проверяет, у каких наступило время запуска, и отправляет их
// workflow в orchestrator. Периодически чистит записи завершённых
// задач.
//
// Структура:
//   - scheduler.go — основная логика Scheduler (Run, Tick)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
package scheduler
