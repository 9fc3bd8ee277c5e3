package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workflow — декларативное определение рабочего процесса.
//
// Workflow загружается из JSON-файла и неизменяем на протяжении
// всего выполнения. Один файл — один workflow.
type Workflow struct {
	// ID — уникальный идентификатор workflow.
	ID uuid.UUID `json:"id"`

	// Name — человекочитаемое имя (например, "nightly-backup").
	Name string `json:"name"`

	// Description — описание назначения workflow.
	Description string `json:"description,omitempty"`

	// Version — семантическая версия определения ("1.2.0").
	Version string `json:"version"`

	// CreatedAt — время создания определения.
	CreatedAt time.Time `json:"created_at"`

	// Steps — упорядоченный список шагов.
	Steps []WorkflowStep `json:"steps"`

	// Variables — общие переменные выполнения.
	// Подставляются в condition шагов и передаются командам
	// как переменные окружения.
	Variables map[string]string `json:"variables,omitempty"`

	// Metadata — служебные метаданные (автор, теги, приоритет).
	Metadata WorkflowMetadata `json:"metadata"`
}

// WorkflowStep — определение одного шага workflow.
type WorkflowStep struct {
	// ID — уникальный идентификатор шага в рамках workflow.
	// Используется как ключ узла в графе зависимостей.
	ID string `json:"id"`

	// Name — человекочитаемое имя шага.
	Name string `json:"name"`

	// StepType — тип шага: command, script, upload, download,
	// transform, validate, notify. Информационный — исполняется
	// всегда пара command+args.
	StepType StepType `json:"step_type"`

	// Command — команда для выполнения.
	Command string `json:"command"`

	// Args — аргументы команды.
	Args []string `json:"args,omitempty"`

	// Timeout — таймаут шага в секундах.
	// Переопределяет workflow.timeout_seconds из конфигурации.
	Timeout *uint64 `json:"timeout,omitempty"`

	// RetryCount — количество повторных попыток после первой.
	// Переопределяет workflow.retry_attempts из конфигурации.
	RetryCount *uint32 `json:"retry_count,omitempty"`

	// DependsOn — список ID шагов, которые должны завершиться раньше.
	DependsOn []string `json:"depends_on,omitempty"`

	// Condition — условие выполнения. Маркеры $name заменяются
	// значениями переменных; результат сравнивается со строкой "true"
	// (без учёта регистра). Условие без маркеров всегда проходит.
	Condition string `json:"condition,omitempty"`

	// Output — имя переменной для вывода шага.
	// Загружается, но обратно в Variables не записывается.
	Output string `json:"output,omitempty"`
}

// StepType — тип шага workflow.
type StepType string

const (
	StepTypeCommand   StepType = "command"
	StepTypeScript    StepType = "script"
	StepTypeUpload    StepType = "upload"
	StepTypeDownload  StepType = "download"
	StepTypeTransform StepType = "transform"
	StepTypeValidate  StepType = "validate"
	StepTypeNotify    StepType = "notify"
)

// validStepTypes — допустимые типы шагов.
var validStepTypes = map[StepType]bool{
	StepTypeCommand:   true,
	StepTypeScript:    true,
	StepTypeUpload:    true,
	StepTypeDownload:  true,
	StepTypeTransform: true,
	StepTypeValidate:  true,
	StepTypeNotify:    true,
}

// IsValid проверяет, что тип шага известен.
func (t StepType) IsValid() bool {
	return validStepTypes[t]
}

// WorkflowMetadata — служебные метаданные workflow.
type WorkflowMetadata struct {
	// Author — автор определения.
	Author string `json:"author"`

	// Tags — произвольные теги для поиска и группировки.
	Tags []string `json:"tags,omitempty"`

	// Priority — приоритет workflow.
	Priority WorkflowPriority `json:"priority"`

	// EstimatedDuration — ожидаемая длительность в секундах.
	EstimatedDuration *uint64 `json:"estimated_duration,omitempty"`

	// ResourceRequirements — подсказки по ресурсам.
	ResourceRequirements ResourceRequirements `json:"resource_requirements"`
}

// WorkflowPriority — приоритет workflow.
type WorkflowPriority string

const (
	PriorityLow      WorkflowPriority = "low"
	PriorityNormal   WorkflowPriority = "normal"
	PriorityHigh     WorkflowPriority = "high"
	PriorityCritical WorkflowPriority = "critical"
)

// ResourceRequirements — подсказки по необходимым ресурсам.
// Движок их не enforc'ит, это метаданные для оператора.
type ResourceRequirements struct {
	CPUCores    uint32 `json:"cpu_cores"`
	MemoryMB    uint32 `json:"memory_mb"`
	DiskSpaceMB uint32 `json:"disk_space_mb"`
}
