package engine

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Runbook/internal/config"
	"github.com/shaiso/Runbook/internal/domain"
)

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	e := New(config.WorkflowConfig{
		WorkflowDir:            dir,
		MaxConcurrentWorkflows: 2,
		TimeoutSeconds:         10,
		RetryAttempts:          0,
	}, nil)
	e.executor.backoff = func(uint32) time.Duration { return 0 }
	return e, dir
}

func writeWorkflow(t *testing.T, dir string, w *domain.Workflow) string {
	t.Helper()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	data, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal workflow: %v", err)
	}
	path := filepath.Join(dir, w.Name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write workflow: %v", err)
	}
	return path
}

func listExecutionRecords(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(dir, executionsDirName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read executions dir: %v", err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestExecuteWorkflow_Success(t *testing.T) {
	e, dir := newTestEngine(t)
	path := writeWorkflow(t, dir, &domain.Workflow{
		Name: "chain",
		Steps: []domain.WorkflowStep{
			shellStep("first", "echo one"),
			func() domain.WorkflowStep {
				s := shellStep("second", "echo two")
				s.DependsOn = []string{"first"}
				return s
			}(),
		},
	})

	execution, err := e.ExecuteWorkflow(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if execution.Status != domain.ExecutionStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", execution.Status)
	}
	if len(execution.StepsExecuted) != 2 {
		t.Fatalf("expected 2 step records, got %d", len(execution.StepsExecuted))
	}
	if execution.StepsExecuted[0].StepID != "first" {
		t.Errorf("dependency order violated: %s first", execution.StepsExecuted[0].StepID)
	}
	if execution.CompletedAt == nil {
		t.Error("CompletedAt should be set on completion")
	}

	records := listExecutionRecords(t, dir)
	if len(records) != 1 {
		t.Errorf("expected 1 execution record, got %d", len(records))
	}
}

func TestExecuteWorkflow_FailFastSkipsRemainingSteps(t *testing.T) {
	e, dir := newTestEngine(t)
	marker := filepath.Join(t.TempDir(), "third-ran")
	path := writeWorkflow(t, dir, &domain.Workflow{
		Name: "failing",
		Steps: []domain.WorkflowStep{
			shellStep("ok", "echo fine"),
			func() domain.WorkflowStep {
				s := shellStep("broken", "echo kaput >&2; exit 1")
				s.DependsOn = []string{"ok"}
				return s
			}(),
			func() domain.WorkflowStep {
				s := shellStep("never", "touch "+marker)
				s.DependsOn = []string{"broken"}
				return s
			}(),
		},
	})

	execution, err := e.ExecuteWorkflow(context.Background(), path)
	if !errors.Is(err, ErrStepFailed) {
		t.Fatalf("expected ErrStepFailed, got %v", err)
	}

	if execution == nil {
		t.Fatal("execution record should be returned even on failure")
	}
	if execution.Status != domain.ExecutionStatusFailed {
		t.Errorf("expected FAILED, got %s", execution.Status)
	}
	if len(execution.StepsExecuted) != 2 {
		t.Errorf("fail-fast should stop after the failed step, got %d records",
			len(execution.StepsExecuted))
	}
	if execution.ErrorMessage == "" {
		t.Error("execution should carry the failing step's error")
	}
	if _, statErr := os.Stat(marker); !os.IsNotExist(statErr) {
		t.Error("steps after the failure must not run")
	}
}

func TestExecuteWorkflow_RecordPersistedOnFailure(t *testing.T) {
	e, dir := newTestEngine(t)
	path := writeWorkflow(t, dir, &domain.Workflow{
		Name: "doomed",
		Steps: []domain.WorkflowStep{
			shellStep("boom", "exit 1"),
		},
	})

	execution, err := e.ExecuteWorkflow(context.Background(), path)
	if err == nil {
		t.Fatal("expected error")
	}

	// The record must land on disk regardless of the run outcome
	records := listExecutionRecords(t, dir)
	if len(records) != 1 {
		t.Fatalf("expected 1 execution record, got %d", len(records))
	}

	saved, err := e.GetExecution(execution.ID)
	if err != nil {
		t.Fatalf("load saved record: %v", err)
	}
	if saved == nil {
		t.Fatal("saved record should be loadable")
	}
	if saved.Status != domain.ExecutionStatusFailed {
		t.Errorf("saved record should be FAILED, got %s", saved.Status)
	}
}

func TestExecuteWorkflow_GraphErrorProducesNoRecord(t *testing.T) {
	e, dir := newTestEngine(t)
	path := writeWorkflow(t, dir, &domain.Workflow{
		Name: "cyclic",
		Steps: []domain.WorkflowStep{
			makeStep("a", "b"),
			makeStep("b", "a"),
		},
	})

	execution, err := e.ExecuteWorkflow(context.Background(), path)
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}
	if execution != nil {
		t.Error("no execution should exist for a definition error")
	}
	if records := listExecutionRecords(t, dir); len(records) != 0 {
		t.Errorf("no record should be saved for a definition error, got %d", len(records))
	}
}

func TestExecuteWorkflow_ValidationErrorProducesNoRecord(t *testing.T) {
	e, dir := newTestEngine(t)
	path := writeWorkflow(t, dir, &domain.Workflow{
		Name: "invalid",
		Steps: []domain.WorkflowStep{
			{ID: "x", StepType: "bogus", Command: "true"},
		},
	})

	_, err := e.ExecuteWorkflow(context.Background(), path)
	if !errors.Is(err, ErrUnknownStepType) {
		t.Fatalf("expected ErrUnknownStepType, got %v", err)
	}
	if records := listExecutionRecords(t, dir); len(records) != 0 {
		t.Errorf("no record expected, got %d", len(records))
	}
}

func TestExecuteWorkflow_NotFound(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.ExecuteWorkflow(context.Background(), "/nonexistent/workflow.json")
	if !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("expected ErrWorkflowNotFound, got %v", err)
	}
}

func TestExecuteWorkflow_MalformedJSON(t *testing.T) {
	e, dir := newTestEngine(t)
	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := e.ExecuteWorkflow(context.Background(), path)
	if err == nil {
		t.Error("expected parse error")
	}
}

func TestExecuteWorkflow_SkippedStepDoesNotFailWorkflow(t *testing.T) {
	e, dir := newTestEngine(t)
	path := writeWorkflow(t, dir, &domain.Workflow{
		Name:      "conditional",
		Variables: map[string]string{"enabled": "false"},
		Steps: []domain.WorkflowStep{
			func() domain.WorkflowStep {
				s := shellStep("guarded", "echo should not run")
				s.Condition = "$enabled"
				return s
			}(),
			shellStep("after", "echo still runs"),
		},
	})

	execution, err := e.ExecuteWorkflow(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if execution.Status != domain.ExecutionStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", execution.Status)
	}
	if execution.StepsExecuted[0].Status != domain.ExecutionStatusSkipped {
		t.Errorf("expected first step SKIPPED, got %s", execution.StepsExecuted[0].Status)
	}
	if execution.StepsExecuted[1].Status != domain.ExecutionStatusCompleted {
		t.Errorf("expected second step COMPLETED, got %s", execution.StepsExecuted[1].Status)
	}
}

func TestGetExecution_Missing(t *testing.T) {
	e, _ := newTestEngine(t)
	execution, err := e.GetExecution(uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if execution != nil {
		t.Error("expected nil for a missing record")
	}
}

func TestListWorkflows(t *testing.T) {
	e, dir := newTestEngine(t)
	writeWorkflow(t, dir, &domain.Workflow{
		Name:  "alpha",
		Steps: []domain.WorkflowStep{makeStep("a")},
	})
	writeWorkflow(t, dir, &domain.Workflow{
		Name:  "beta",
		Steps: []domain.WorkflowStep{makeStep("b")},
	})
	// Unparseable files are skipped, not fatal
	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	workflows, err := e.ListWorkflows()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(workflows) != 2 {
		t.Errorf("expected 2 workflows, got %d", len(workflows))
	}
}

func TestListWorkflows_MissingDir(t *testing.T) {
	e := New(config.WorkflowConfig{
		WorkflowDir:            "/nonexistent/dir",
		MaxConcurrentWorkflows: 1,
		TimeoutSeconds:         10,
	}, nil)

	workflows, err := e.ListWorkflows()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(workflows) != 0 {
		t.Errorf("expected no workflows, got %d", len(workflows))
	}
}
