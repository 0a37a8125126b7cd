package workflow

import (
	"context"
	"testing"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
)

type fakeWorkflowRepo struct {
	rules []domain.WorkflowRule
	tasks []domain.Task
}

func (r *fakeWorkflowRepo) CreateRule(ctx context.Context, rule *domain.WorkflowRule) error {
	r.rules = append(r.rules, *rule)
	return nil
}

func (r *fakeWorkflowRepo) ListRules(ctx context.Context) ([]domain.WorkflowRule, error) {
	return r.rules, nil
}

func (r *fakeWorkflowRepo) ListActiveRules(ctx context.Context, triggerType string) ([]domain.WorkflowRule, error) {
	var out []domain.WorkflowRule
	for _, rule := range r.rules {
		if rule.IsActive && rule.TriggerType == triggerType {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *fakeWorkflowRepo) UpdateRule(ctx context.Context, rule *domain.WorkflowRule) error {
	return nil
}

func (r *fakeWorkflowRepo) DeleteRule(ctx context.Context, id string) error { return nil }

func (r *fakeWorkflowRepo) CreateTask(ctx context.Context, task *domain.Task) error {
	r.tasks = append(r.tasks, *task)
	return nil
}

func (r *fakeWorkflowRepo) ListTasks(ctx context.Context, assignedTo string) ([]domain.Task, error) {
	return r.tasks, nil
}

func TestSubstitute(t *testing.T) {
	event := domain.Event{
		Type:     domain.EventDealStageChange,
		EntityID: "deal-1",
		ActorID:  "agent-1",
		Payload:  map[string]interface{}{"stage": "proposal", "value": 1500.0},
	}

	tests := []struct {
		template string
		want     string
	}{
		{"no placeholders", "no placeholders"},
		{"Deal ${entity_id} moved to ${stage}", "Deal deal-1 moved to proposal"},
		{"by ${actor_id} on ${type}", "by agent-1 on deal_stage_changed"},
		{"value: ${value}", "value: 1500"},
		{"unknown ${nope} field", "unknown  field"},
		{"dangling ${brace", "dangling ${brace"},
	}
	for _, tt := range tests {
		if got := substitute(tt.template, event); got != tt.want {
			t.Errorf("substitute(%q) = %q, want %q", tt.template, got, tt.want)
		}
	}
}

func TestHandleEventCreatesTask(t *testing.T) {
	repo := &fakeWorkflowRepo{rules: []domain.WorkflowRule{
		{
			ID:          "r1",
			TriggerType: domain.TriggerDealStageChange,
			IsActive:    true,
			Actions: domain.ActionList{{
				Type:         domain.ActionCreateTask,
				TaskTemplate: "Review deal ${entity_id}",
				AssignTo:     "manager-1",
				DueInDays:    3,
			}},
		},
		{
			ID:          "r2",
			TriggerType: domain.TriggerCustomerCreated, // different trigger, must not fire
			IsActive:    true,
			Actions:     domain.ActionList{{Type: domain.ActionCreateTask}},
		},
		{
			ID:          "r3",
			TriggerType: domain.TriggerDealStageChange,
			IsActive:    false, // inactive, must not fire
			Actions:     domain.ActionList{{Type: domain.ActionCreateTask}},
		},
	}}
	exec := NewExecutor(repo)

	event := domain.Event{Type: domain.EventDealStageChange, EntityID: "deal-7"}
	if err := exec.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(repo.tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(repo.tasks))
	}
	task := repo.tasks[0]
	if task.Title != "Review deal deal-7" {
		t.Errorf("title = %q, want expanded template", task.Title)
	}
	if task.AssignedTo != "manager-1" {
		t.Errorf("assigned_to = %q, want manager-1", task.AssignedTo)
	}
	if task.DueDate == nil {
		t.Error("due date not set")
	}
}

func TestHandleEventTaskTitleFallback(t *testing.T) {
	repo := &fakeWorkflowRepo{rules: []domain.WorkflowRule{{
		ID:          "r1",
		TriggerType: domain.TriggerCustomerCreated,
		IsActive:    true,
		Actions:     domain.ActionList{{Type: domain.ActionCreateTask}},
	}}}
	exec := NewExecutor(repo)

	event := domain.Event{Type: domain.EventCustomerCreated, EntityID: "c1"}
	if err := exec.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(repo.tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(repo.tasks))
	}
	if want := "Follow up on " + domain.EventCustomerCreated; repo.tasks[0].Title != want {
		t.Errorf("title = %q, want %q", repo.tasks[0].Title, want)
	}
}

func TestHandleEventUnknownActionDoesNotBlock(t *testing.T) {
	repo := &fakeWorkflowRepo{rules: []domain.WorkflowRule{{
		ID:          "r1",
		TriggerType: domain.TriggerCustomerCreated,
		IsActive:    true,
		Actions: domain.ActionList{
			{Type: "explode"},
			{Type: domain.ActionCreateTask, TaskTemplate: "still runs"},
		},
	}}}
	exec := NewExecutor(repo)

	event := domain.Event{Type: domain.EventCustomerCreated, EntityID: "c1"}
	if err := exec.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(repo.tasks) != 1 || repo.tasks[0].Title != "still runs" {
		t.Fatalf("tasks = %+v, want the create_task action to run", repo.tasks)
	}
}
