package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Runbook/internal/domain"
)

// fakeSubmitter записывает принятые workflow.
type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []string
	cleanups  int
}

func (f *fakeSubmitter) SubmitWorkflow(ctx context.Context, workflowPath string) (*domain.WorkflowExecution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, workflowPath)
	return &domain.WorkflowExecution{ID: uuid.New()}, nil
}

func (f *fakeSubmitter) CleanupCompletedTasks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanups++
	return 0
}

func (f *fakeSubmitter) submittedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.submitted...)
}

func everyMinute(name, path string) domain.Schedule {
	return domain.Schedule{
		Name:         name,
		WorkflowPath: path,
		CronExpr:     "* * * * *",
		Enabled:      true,
	}
}

func TestNew_RegistersEnabledSchedules(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(Config{
		Orchestrator: sub,
		Schedules: []domain.Schedule{
			everyMinute("a", "./a.json"),
			{Name: "off", WorkflowPath: "./off.json", CronExpr: "* * * * *", Enabled: false},
		},
	})

	if len(s.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(s.entries))
	}
	if s.entries[0].schedule.Name != "a" {
		t.Errorf("wrong schedule registered: %s", s.entries[0].schedule.Name)
	}
	if s.entries[0].nextDue.IsZero() {
		t.Error("next due should be computed at registration")
	}
}

func TestNew_SkipsInvalidCronExpr(t *testing.T) {
	s := New(Config{
		Orchestrator: &fakeSubmitter{},
		Schedules: []domain.Schedule{
			{Name: "broken", WorkflowPath: "./b.json", CronExpr: "nope", Enabled: true},
			everyMinute("good", "./g.json"),
		},
	})

	if len(s.entries) != 1 {
		t.Fatalf("invalid schedule should be skipped, got %d entries", len(s.entries))
	}
	if s.entries[0].schedule.Name != "good" {
		t.Errorf("wrong schedule kept: %s", s.entries[0].schedule.Name)
	}
}

func TestTick_SubmitsDueSchedules(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(Config{
		Orchestrator: sub,
		Schedules:    []domain.Schedule{everyMinute("due", "./due.json")},
	})

	// Force the schedule to be due and tick past it
	s.entries[0].nextDue = time.Now().UTC().Add(-time.Second)
	s.Tick(context.Background(), time.Now().UTC())
	s.wg.Wait()

	paths := sub.submittedPaths()
	if len(paths) != 1 || paths[0] != "./due.json" {
		t.Fatalf("expected one submission of ./due.json, got %v", paths)
	}

	// Next due moved into the future: an immediate second tick is a no-op
	s.Tick(context.Background(), time.Now().UTC())
	s.wg.Wait()
	if len(sub.submittedPaths()) != 1 {
		t.Errorf("schedule should not fire twice within the same minute")
	}
}

func TestTick_NotDueYet(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(Config{
		Orchestrator: sub,
		Schedules:    []domain.Schedule{everyMinute("future", "./f.json")},
	})

	s.Tick(context.Background(), time.Now().UTC())
	s.wg.Wait()

	if len(sub.submittedPaths()) != 0 {
		t.Errorf("nothing should be submitted before next due, got %v", sub.submittedPaths())
	}
}

func TestTick_MultipleDueSchedules(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(Config{
		Orchestrator: sub,
		Schedules: []domain.Schedule{
			everyMinute("one", "./one.json"),
			everyMinute("two", "./two.json"),
		},
	})

	past := time.Now().UTC().Add(-time.Second)
	s.entries[0].nextDue = past
	s.entries[1].nextDue = past

	s.Tick(context.Background(), time.Now().UTC())
	s.wg.Wait()

	if len(sub.submittedPaths()) != 2 {
		t.Errorf("both due schedules should fire, got %v", sub.submittedPaths())
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(Config{Orchestrator: sub})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run should return after context cancellation")
	}
}
