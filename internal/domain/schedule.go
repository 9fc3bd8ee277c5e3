package domain

// Schedule — расписание автоматического запуска workflow.
//
// Schedule объявляется в конфигурационном файле и обрабатывается
// планировщиком: когда наступает время, workflow отправляется
// оркестратору как обычная задача.
type Schedule struct {
	// Name — уникальное имя расписания.
	Name string `json:"name" yaml:"name"`

	// WorkflowPath — путь к JSON-файлу workflow.
	WorkflowPath string `json:"workflow" yaml:"workflow"`

	// CronExpr — cron-выражение (5 полей: minute hour dom month dow).
	CronExpr string `json:"cron_expr" yaml:"cron_expr"`

	// Timezone — часовой пояс для вычисления времени запуска
	// (например, "Europe/Moscow"). Пустое значение — UTC.
	Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty"`

	// Enabled — флаг активности. Неактивные расписания не запускаются.
	Enabled bool `json:"enabled" yaml:"enabled"`
}
