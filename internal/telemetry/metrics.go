package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus метрики ядра.
var (
	// tasksTotal — количество задач оркестратора по виду и исходу.
	tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "runbook_tasks_total",
		Help: "Total orchestrator tasks by type and final status",
	}, []string{"type", "status"})

	// activeTasks — количество задач в статусе RUNNING.
	activeTasks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "runbook_active_tasks",
		Help: "Number of tasks currently running",
	})

	// stepsTotal — количество выполненных шагов workflow по статусу.
	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "runbook_step_executions_total",
		Help: "Total workflow step executions by status",
	}, []string{"status"})

	// stepDuration — длительность выполнения шага.
	stepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "runbook_step_duration_seconds",
		Help:    "Workflow step execution duration",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

// RecordTask фиксирует завершение задачи оркестратора.
func RecordTask(taskType, status string) {
	tasksTotal.WithLabelValues(taskType, status).Inc()
}

// TaskStarted фиксирует переход задачи в RUNNING.
func TaskStarted() {
	activeTasks.Inc()
}

// TaskFinished фиксирует выход задачи из RUNNING.
func TaskFinished() {
	activeTasks.Dec()
}

// RecordStep фиксирует выполнение шага workflow.
func RecordStep(status string) {
	stepsTotal.WithLabelValues(status).Inc()
}

// ObserveStepDuration фиксирует длительность шага.
func ObserveStepDuration(d time.Duration) {
	stepDuration.Observe(d.Seconds())
}
