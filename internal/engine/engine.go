package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Runbook/internal/config"
	"github.com/shaiso/Runbook/internal/domain"
	"github.com/shaiso/Runbook/internal/telemetry"
)

// executionsDirName — поддиректория записей выполнений в workflow_dir.
const executionsDirName = "executions"

// Engine — движок выполнения workflow.
//
// Engine загружает определение workflow из файла, разрешает порядок
// шагов, последовательно выполняет их через Executor и сохраняет
// запись выполнения на диск.
//
// Политика fail-fast: первый шаг со статусом FAILED прерывает
// выполнение; оставшиеся шаги не запускаются, но накопленная история
// шагов сохраняется в записи. SKIPPED не считается ошибкой и не
// блокирует зависимые шаги.
type Engine struct {
	config   config.WorkflowConfig
	executor *Executor
	logger   *slog.Logger
}

// New создаёт новый Engine.
func New(cfg config.WorkflowConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		config:   cfg,
		executor: NewExecutor(cfg.TimeoutSeconds, cfg.RetryAttempts, logger),
		logger:   logger,
	}
}

// ExecuteWorkflow выполняет workflow из файла workflowPath.
//
// Ошибки определения и графа (файл не найден, битый JSON, неизвестная
// зависимость, цикл) фатальны до запуска первого шага — запись
// выполнения в этом случае не сохраняется.
//
// После запуска первого шага запись сохраняется всегда, независимо от
// исхода. При падении шага возвращаются и запись (с частичной
// историей), и ошибка.
func (e *Engine) ExecuteWorkflow(ctx context.Context, workflowPath string) (*domain.WorkflowExecution, error) {
	workflow, err := e.LoadWorkflow(workflowPath)
	if err != nil {
		return nil, err
	}

	if err := Validate(workflow); err != nil {
		return nil, fmt.Errorf("validate workflow %s: %w", workflow.Name, err)
	}

	// Порядок разрешается до создания записи: ошибка графа — load-time
	sorted, err := SortSteps(workflow.Steps)
	if err != nil {
		return nil, fmt.Errorf("resolve step order for %s: %w", workflow.Name, err)
	}

	execution := &domain.WorkflowExecution{
		ID:            uuid.New(),
		WorkflowID:    workflow.ID,
		Status:        domain.ExecutionStatusPending,
		StartedAt:     time.Now().UTC(),
		StepsExecuted: make([]domain.StepExecution, 0, len(sorted)),
		Variables:     maps.Clone(workflow.Variables),
	}

	e.logger.Info("starting workflow execution",
		"execution_id", execution.ID,
		"workflow", workflow.Name,
		"steps", len(sorted),
	)

	runErr := e.runSteps(ctx, sorted, execution)

	if runErr == nil {
		execution.MarkCompleted()
		e.logger.Info("workflow execution completed", "execution_id", execution.ID)
	}

	// Запись сохраняется независимо от исхода выполнения
	if saveErr := e.saveExecutionRecord(execution); saveErr != nil {
		e.logger.Error("failed to save execution record",
			"execution_id", execution.ID,
			"error", saveErr,
		)
		if runErr == nil {
			runErr = saveErr
		}
	}

	return execution, runErr
}

// runSteps выполняет шаги в разрешённом порядке, строго последовательно.
func (e *Engine) runSteps(ctx context.Context, sorted []*domain.WorkflowStep, execution *domain.WorkflowExecution) error {
	execution.Status = domain.ExecutionStatusRunning

	for _, step := range sorted {
		stepExec := e.executor.Run(ctx, step, execution.Variables)
		execution.StepsExecuted = append(execution.StepsExecuted, stepExec)
		telemetry.RecordStep(string(stepExec.Status))

		// Fail-fast: первый упавший шаг прерывает выполнение
		for i := range execution.StepsExecuted {
			failed := &execution.StepsExecuted[i]
			if failed.Status != domain.ExecutionStatusFailed {
				continue
			}
			execution.MarkFailed(failed.ErrorMessage)
			return fmt.Errorf("%w: step %s: %s",
				ErrStepFailed, failed.StepID, failed.ErrorMessage)
		}
	}

	return nil
}

// LoadWorkflow загружает и десериализует определение workflow.
func (e *Engine) LoadWorkflow(workflowPath string) (*domain.Workflow, error) {
	if _, err := os.Stat(workflowPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflowPath)
	}

	data, err := os.ReadFile(workflowPath)
	if err != nil {
		return nil, fmt.Errorf("read workflow %s: %w", workflowPath, err)
	}

	var workflow domain.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("parse workflow %s: %w", workflowPath, err)
	}

	e.logger.Info("loaded workflow",
		"name", workflow.Name,
		"version", workflow.Version,
	)

	return &workflow, nil
}

// saveExecutionRecord сохраняет запись выполнения в
// <workflow_dir>/executions/<execution_id>.json.
// Запись пишется один раз и после этого не обновляется.
func (e *Engine) saveExecutionRecord(execution *domain.WorkflowExecution) error {
	executionsDir := filepath.Join(e.config.WorkflowDir, executionsDirName)
	if err := os.MkdirAll(executionsDir, 0o755); err != nil {
		return fmt.Errorf("create executions dir: %w", err)
	}

	recordPath := filepath.Join(executionsDir, execution.ID.String()+".json")
	data, err := json.MarshalIndent(execution, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal execution record: %w", err)
	}

	if err := os.WriteFile(recordPath, data, 0o644); err != nil {
		return fmt.Errorf("write execution record: %w", err)
	}

	e.logger.Info("execution record saved",
		"execution_id", execution.ID,
		"path", recordPath,
	)
	return nil
}

// GetExecution читает сохранённую запись выполнения.
// Возвращает nil без ошибки, если записи нет.
func (e *Engine) GetExecution(executionID uuid.UUID) (*domain.WorkflowExecution, error) {
	recordPath := filepath.Join(e.config.WorkflowDir, executionsDirName,
		executionID.String()+".json")

	data, err := os.ReadFile(recordPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read execution record: %w", err)
	}

	var execution domain.WorkflowExecution
	if err := json.Unmarshal(data, &execution); err != nil {
		return nil, fmt.Errorf("parse execution record: %w", err)
	}

	return &execution, nil
}

// ListWorkflows сканирует workflow_dir и возвращает все корректные
// определения. Файлы, которые не парсятся как workflow, пропускаются.
func (e *Engine) ListWorkflows() ([]domain.Workflow, error) {
	entries, err := os.ReadDir(e.config.WorkflowDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read workflow dir: %w", err)
	}

	workflows := make([]domain.Workflow, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(e.config.WorkflowDir, entry.Name()))
		if err != nil {
			continue
		}

		var workflow domain.Workflow
		if err := json.Unmarshal(data, &workflow); err != nil {
			continue
		}
		workflows = append(workflows, workflow)
	}

	return workflows, nil
}
