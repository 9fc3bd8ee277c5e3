package domain

import "testing"

func TestExecutionStatus_IsTerminal(t *testing.T) {
	terminal := []ExecutionStatus{
		ExecutionStatusCompleted,
		ExecutionStatusFailed,
		ExecutionStatusCancelled,
		ExecutionStatusSkipped,
	}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	for _, s := range []ExecutionStatus{ExecutionStatusPending, ExecutionStatusRunning} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestTaskStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from TaskStatus
		to   TaskStatus
		want bool
	}{
		{TaskStatusPending, TaskStatusRunning, true},
		{TaskStatusPending, TaskStatusFailed, true},
		{TaskStatusRunning, TaskStatusCompleted, true},
		{TaskStatusRunning, TaskStatusCancelled, true},
		// Backward moves are forbidden
		{TaskStatusRunning, TaskStatusPending, false},
		{TaskStatusCompleted, TaskStatusRunning, false},
		// Terminal statuses never transition
		{TaskStatusCancelled, TaskStatusCompleted, false},
		{TaskStatusFailed, TaskStatusCancelled, false},
		{TaskStatusCompleted, TaskStatusFailed, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTaskInfo_Lifecycle(t *testing.T) {
	task := NewTaskInfo(TaskTypeWorkflow)

	if task.Status != TaskStatusPending {
		t.Fatalf("new task should be PENDING, got %s", task.Status)
	}
	if task.ID.String() == "" {
		t.Error("ID should be assigned")
	}
	if task.IsFinished() {
		t.Error("new task should not be finished")
	}

	task.MarkRunning()
	if task.Status != TaskStatusRunning || task.StartedAt == nil {
		t.Errorf("MarkRunning: %s, started=%v", task.Status, task.StartedAt)
	}

	task.MarkCompleted()
	if task.Status != TaskStatusCompleted || task.CompletedAt == nil {
		t.Errorf("MarkCompleted: %s, completed=%v", task.Status, task.CompletedAt)
	}
	if !task.IsFinished() {
		t.Error("completed task should be finished")
	}
	if task.Duration() < 0 {
		t.Error("duration should be non-negative")
	}
}

func TestTaskInfo_MarkFailed(t *testing.T) {
	task := NewTaskInfo(TaskTypeUpload)
	task.MarkRunning()
	task.MarkFailed("disk full")

	if task.Status != TaskStatusFailed {
		t.Errorf("expected FAILED, got %s", task.Status)
	}
	if task.ErrorMessage != "disk full" {
		t.Errorf("error message not recorded: %q", task.ErrorMessage)
	}
	if task.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
}
