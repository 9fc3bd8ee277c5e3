// Package config загружает конфигурацию из YAML-файла
// с переопределением через переменные окружения AUTOMATION_*.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Runbook/internal/domain"
)

// Config — полная конфигурация приложения.
type Config struct {
	// Upload — настройки пайплайна загрузок.
	Upload UploadConfig `yaml:"upload"`

	// Workflow — настройки движка workflow.
	Workflow WorkflowConfig `yaml:"workflow"`

	// System — служебные директории и лимиты.
	System SystemConfig `yaml:"system"`

	// Logging — настройки логирования.
	Logging LoggingConfig `yaml:"logging"`

	// Schedules — расписания автоматического запуска workflow.
	Schedules []domain.Schedule `yaml:"schedules,omitempty"`
}

// UploadConfig — настройки пайплайна загрузок.
type UploadConfig struct {
	// UploadDir — директория обработанных загрузок.
	// Записи сохраняются в <upload_dir>/records/.
	UploadDir string `yaml:"upload_dir"`

	// MaxFileSize — максимальный размер файла в байтах.
	MaxFileSize uint64 `yaml:"max_file_size"`

	// AllowedExtensions — разрешённые расширения (без точки, lowercase).
	AllowedExtensions []string `yaml:"allowed_extensions"`

	// CompressionEnabled — сжимать ли файлы gzip'ом.
	CompressionEnabled bool `yaml:"compression_enabled"`

	// BackupEnabled — создавать ли резервную копию перед обработкой.
	BackupEnabled bool `yaml:"backup_enabled"`

	// BackupDir — директория резервных копий.
	BackupDir string `yaml:"backup_dir"`
}

// WorkflowConfig — настройки движка workflow.
type WorkflowConfig struct {
	// WorkflowDir — директория определений workflow.
	// Записи выполнений сохраняются в <workflow_dir>/executions/.
	WorkflowDir string `yaml:"workflow_dir"`

	// MaxConcurrentWorkflows — размер глобального пула permit'ов.
	// Один пул делится между workflow- и upload-задачами.
	MaxConcurrentWorkflows int `yaml:"max_concurrent_workflows"`

	// TimeoutSeconds — таймаут шага по умолчанию.
	TimeoutSeconds uint64 `yaml:"timeout_seconds"`

	// RetryAttempts — количество повторных попыток шага по умолчанию.
	RetryAttempts uint32 `yaml:"retry_attempts"`
}

// SystemConfig — служебные директории и лимиты.
type SystemConfig struct {
	// TempDir — директория временных файлов.
	TempDir string `yaml:"temp_dir"`

	// CacheDir — директория кэша.
	CacheDir string `yaml:"cache_dir"`

	// MaxMemoryUsage — лимит памяти в байтах (информационный).
	MaxMemoryUsage uint64 `yaml:"max_memory_usage"`

	// CPULimit — доля CPU (информационный).
	CPULimit float64 `yaml:"cpu_limit"`
}

// LoggingConfig — настройки логирования.
type LoggingConfig struct {
	// LogLevel — уровень: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFile — путь к файлу лога. Пустое значение — только консоль.
	LogFile string `yaml:"log_file,omitempty"`

	// EnableConsole — дублировать ли лог в консоль.
	EnableConsole bool `yaml:"enable_console"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	return Config{
		Upload: UploadConfig{
			UploadDir:   "./uploads",
			MaxFileSize: 100 * 1024 * 1024, // 100MB
			AllowedExtensions: []string{
				"txt", "pdf", "doc", "docx", "zip", "tar", "gz",
			},
			CompressionEnabled: true,
			BackupEnabled:      true,
			BackupDir:          "./backups",
		},
		Workflow: WorkflowConfig{
			WorkflowDir:            "./workflows",
			MaxConcurrentWorkflows: 4,
			TimeoutSeconds:         3600, // 1 час
			RetryAttempts:          3,
		},
		System: SystemConfig{
			TempDir:        "./temp",
			CacheDir:       "./cache",
			MaxMemoryUsage: 1024 * 1024 * 1024, // 1GB
			CPULimit:       0.8,
		},
		Logging: LoggingConfig{
			LogLevel:      "info",
			EnableConsole: true,
		},
	}
}

// Load читает конфигурацию из YAML-файла и применяет
// переопределения из окружения.
//
// Отсутствующий файл — ошибка; неуказанные поля заполняются
// значениями по умолчанию.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyEnv применяет переопределения из переменных окружения.
//
// Поддерживаются:
//   - AUTOMATION_WORKFLOW_DIR
//   - AUTOMATION_UPLOAD_DIR
//   - AUTOMATION_MAX_CONCURRENT_WORKFLOWS
//   - AUTOMATION_TIMEOUT_SECONDS
//   - AUTOMATION_RETRY_ATTEMPTS
//   - AUTOMATION_LOG_LEVEL
func (c *Config) applyEnv() {
	if v := os.Getenv("AUTOMATION_WORKFLOW_DIR"); v != "" {
		c.Workflow.WorkflowDir = v
	}
	if v := os.Getenv("AUTOMATION_UPLOAD_DIR"); v != "" {
		c.Upload.UploadDir = v
	}
	if v := os.Getenv("AUTOMATION_MAX_CONCURRENT_WORKFLOWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Workflow.MaxConcurrentWorkflows = n
		}
	}
	if v := os.Getenv("AUTOMATION_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			c.Workflow.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("AUTOMATION_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			c.Workflow.RetryAttempts = uint32(n)
		}
	}
	if v := os.Getenv("AUTOMATION_LOG_LEVEL"); v != "" {
		c.Logging.LogLevel = v
	}
}

// validate проверяет согласованность конфигурации.
func (c *Config) validate() error {
	if c.Workflow.MaxConcurrentWorkflows <= 0 {
		return fmt.Errorf("workflow.max_concurrent_workflows must be positive, got %d",
			c.Workflow.MaxConcurrentWorkflows)
	}
	if c.Workflow.TimeoutSeconds == 0 {
		return fmt.Errorf("workflow.timeout_seconds must be positive")
	}
	for i := range c.Schedules {
		s := &c.Schedules[i]
		if s.Name == "" {
			return fmt.Errorf("schedules[%d]: name is required", i)
		}
		if s.WorkflowPath == "" {
			return fmt.Errorf("schedule %s: workflow path is required", s.Name)
		}
		if s.CronExpr == "" {
			return fmt.Errorf("schedule %s: cron_expr is required", s.Name)
		}
	}
	return nil
}
