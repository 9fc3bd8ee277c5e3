package engine

import (
	"errors"
	"testing"

	"github.com/shaiso/Runbook/internal/domain"
)

func TestValidate_NilWorkflow(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrEmptySteps) {
		t.Errorf("expected ErrEmptySteps, got %v", err)
	}
}

func TestValidate_EmptySteps(t *testing.T) {
	w := &domain.Workflow{Name: "empty"}
	if err := Validate(w); !errors.Is(err, ErrEmptySteps) {
		t.Errorf("expected ErrEmptySteps, got %v", err)
	}
}

func TestValidate_EmptyStepID(t *testing.T) {
	w := &domain.Workflow{
		Steps: []domain.WorkflowStep{
			{ID: "", StepType: domain.StepTypeCommand, Command: "true"},
		},
	}
	if err := Validate(w); !errors.Is(err, ErrEmptyStepID) {
		t.Errorf("expected ErrEmptyStepID, got %v", err)
	}
}

func TestValidate_DuplicateStepID(t *testing.T) {
	w := &domain.Workflow{
		Steps: []domain.WorkflowStep{
			makeStep("build"),
			makeStep("build"),
		},
	}

	err := Validate(w)
	if !errors.Is(err, ErrDuplicateStepID) {
		t.Fatalf("expected ErrDuplicateStepID, got %v", err)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.StepID != "build" {
		t.Errorf("expected step ID build, got %q", verr.StepID)
	}
}

func TestValidate_UnknownStepType(t *testing.T) {
	w := &domain.Workflow{
		Steps: []domain.WorkflowStep{
			{ID: "a", StepType: "teleport", Command: "true"},
		},
	}
	if err := Validate(w); !errors.Is(err, ErrUnknownStepType) {
		t.Errorf("expected ErrUnknownStepType, got %v", err)
	}
}

func TestValidate_SelfDependency(t *testing.T) {
	w := &domain.Workflow{
		Steps: []domain.WorkflowStep{
			makeStep("a", "a"),
		},
	}
	if err := Validate(w); !errors.Is(err, ErrSelfDependency) {
		t.Errorf("expected ErrSelfDependency, got %v", err)
	}
}

func TestValidate_ValidWorkflow(t *testing.T) {
	w := &domain.Workflow{
		Name: "ok",
		Steps: []domain.WorkflowStep{
			makeStep("a"),
			makeStep("b", "a"),
		},
	}
	if err := Validate(w); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_AllStepTypes(t *testing.T) {
	types := []domain.StepType{
		domain.StepTypeCommand,
		domain.StepTypeScript,
		domain.StepTypeUpload,
		domain.StepTypeDownload,
		domain.StepTypeTransform,
		domain.StepTypeValidate,
		domain.StepTypeNotify,
	}

	for _, st := range types {
		w := &domain.Workflow{
			Steps: []domain.WorkflowStep{
				{ID: "a", StepType: st, Command: "true"},
			},
		}
		if err := Validate(w); err != nil {
			t.Errorf("step type %s should be valid: %v", st, err)
		}
	}
}
