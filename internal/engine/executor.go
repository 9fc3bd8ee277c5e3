package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/shaiso/Runbook/internal/domain"
	"github.com/shaiso/Runbook/internal/telemetry"
)

// Executor выполняет отдельные шаги workflow.
//
// Для каждого шага:
//   - Проверяет condition (на пропуске — SKIPPED, команда не запускается)
//   - Выполняет команду с retry и exponential backoff (2^attempt секунд)
//   - Ограничивает каждую попытку таймаутом
//   - Захватывает stdout при успехе и stderr при ошибке
//
// Таймаут действует на одну попытку команды, а не на retry-цикл целиком;
// попытка, упавшая по таймауту, расходует retry-бюджет как обычная ошибка.
type Executor struct {
	// defaultTimeout — таймаут попытки, если шаг не переопределил.
	defaultTimeout time.Duration

	// defaultRetries — retry-бюджет, если шаг не переопределил.
	defaultRetries uint32

	// backoff — задержка перед повтором после попытки attempt.
	// Переопределяется в тестах.
	backoff func(attempt uint32) time.Duration

	logger *slog.Logger
}

// NewExecutor создаёт Executor с настройками по умолчанию из конфигурации.
func NewExecutor(timeoutSeconds uint64, retryAttempts uint32, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		defaultTimeout: time.Duration(timeoutSeconds) * time.Second,
		defaultRetries: retryAttempts,
		backoff:        exponentialBackoff,
		logger:         logger,
	}
}

// exponentialBackoff возвращает 2^attempt секунд.
// Потолка нет: retry-бюджет сам по себе маленький.
func exponentialBackoff(attempt uint32) time.Duration {
	return time.Duration(uint64(1)<<attempt) * time.Second
}

// Run выполняет один шаг и возвращает запись о его выполнении.
//
// Ошибки выполнения не возвращаются наружу — они фиксируются в
// StepExecution; решение о прерывании workflow принимает движок.
func (e *Executor) Run(ctx context.Context, step *domain.WorkflowStep, variables map[string]string) domain.StepExecution {
	stepExec := domain.StepExecution{
		StepID:    step.ID,
		Status:    domain.ExecutionStatusPending,
		StartedAt: time.Now().UTC(),
	}

	e.logger.Info("executing step", "step_id", step.ID, "name", step.Name)

	// Condition gate: пропуск без retry и без запуска команды
	if step.Condition != "" && !EvaluateCondition(step.Condition, variables) {
		now := time.Now().UTC()
		stepExec.Status = domain.ExecutionStatusSkipped
		stepExec.CompletedAt = &now
		e.logger.Info("step skipped due to condition", "step_id", step.ID)
		return stepExec
	}

	stepExec.Status = domain.ExecutionStatusRunning

	maxRetries := e.defaultRetries
	if step.RetryCount != nil {
		maxRetries = *step.RetryCount
	}

	var lastErr error
	cancelled := false

	for attempt := uint32(0); attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			stepExec.RetryCount = attempt
			e.logger.Info("retrying step",
				"step_id", step.ID,
				"attempt", attempt,
				"max_retries", maxRetries,
			)
		}

		output, err := e.runCommand(ctx, step, variables)
		if err == nil {
			now := time.Now().UTC()
			stepExec.Output = output
			stepExec.Status = domain.ExecutionStatusCompleted
			stepExec.CompletedAt = &now
			stepExec.ErrorMessage = ""
			e.logger.Info("step completed", "step_id", step.ID, "attempt", attempt)
			telemetry.ObserveStepDuration(stepExec.Duration())
			return stepExec
		}

		lastErr = err
		stepExec.ErrorMessage = err.Error()

		if attempt < maxRetries {
			// Ожидание с учётом отмены context
			select {
			case <-time.After(e.backoff(attempt)):
			case <-ctx.Done():
				lastErr = ctx.Err()
				stepExec.ErrorMessage = ctx.Err().Error()
				cancelled = true
			}
		}

		if cancelled {
			break
		}
	}

	now := time.Now().UTC()
	stepExec.Status = domain.ExecutionStatusFailed
	stepExec.CompletedAt = &now
	e.logger.Error("step failed",
		"step_id", step.ID,
		"retries", maxRetries,
		"error", lastErr,
	)
	telemetry.ObserveStepDuration(stepExec.Duration())

	return stepExec
}

// runCommand запускает команду шага с таймаутом.
//
// Переменные workflow добавляются к окружению процесса поверх
// окружения родителя; имя переменной используется как имя
// переменной окружения без изменений.
func (e *Executor) runCommand(ctx context.Context, step *domain.WorkflowStep, variables map[string]string) (string, error) {
	timeout := e.defaultTimeout
	if step.Timeout != nil {
		timeout = time.Duration(*step.Timeout) * time.Second
	}

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, step.Command, step.Args...)

	env := os.Environ()
	for key, value := range variables {
		env = append(env, key+"="+value)
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	// Таймаут — отдельный класс ошибки, но retry-бюджет расходует так же
	if cmdCtx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%w: step %s exceeded %s", ErrStepTimeout, step.ID, timeout)
	}

	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: %s", ErrCommandFailed, msg)
	}

	return stdout.String(), nil
}
