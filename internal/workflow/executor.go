package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
)

// Executor matches incoming domain events against active workflow rules
// and runs their actions.
type Executor struct {
	rules repository.WorkflowRepository
}

// NewExecutor creates the rule executor.
func NewExecutor(rules repository.WorkflowRepository) *Executor {
	return &Executor{rules: rules}
}

// HandleEvent runs every active rule whose trigger matches the event
// type. Rules execute independently; one failing action never blocks the
// rest.
func (e *Executor) HandleEvent(ctx context.Context, event domain.Event) error {
	rules, err := e.rules.ListActiveRules(ctx, event.Type)
	if err != nil {
		return fmt.Errorf("list rules for %s: %w", event.Type, err)
	}

	for _, rule := range rules {
		for _, action := range rule.Actions {
			if err := e.execute(ctx, rule, action, event); err != nil {
				log.L().Error().Err(err).
					Str("rule_id", rule.ID).
					Str("action", action.Type).
					Str(log.FieldEventType, event.Type).
					Msg("workflow action failed")
			}
		}
	}
	return nil
}

func (e *Executor) execute(ctx context.Context, rule domain.WorkflowRule, action domain.WorkflowAction, event domain.Event) error {
	switch action.Type {
	case domain.ActionCreateTask:
		return e.createTask(ctx, action, event)

	case domain.ActionSendEmail:
		log.L().Info().
			Str("rule_id", rule.ID).
			Str(log.FieldEventType, event.Type).
			Str("template", substitute(action.Template, event)).
			Msg("send_email action triggered")
		return nil

	case domain.ActionSendNotification:
		log.L().Info().
			Str("rule_id", rule.ID).
			Str(log.FieldEventType, event.Type).
			Str("template", substitute(action.Template, event)).
			Msg("send_notification action triggered")
		return nil

	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
}

func (e *Executor) createTask(ctx context.Context, action domain.WorkflowAction, event domain.Event) error {
	title := substitute(action.TaskTemplate, event)
	if title == "" {
		title = "Follow up on " + event.Type
	}

	task := &domain.Task{
		Title:      title,
		AssignedTo: action.AssignTo,
	}
	if action.DueInDays > 0 {
		due := time.Now().AddDate(0, 0, action.DueInDays)
		task.DueDate = &due
	}

	if err := e.rules.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	log.L().Info().
		Str("task_id", task.ID).
		Str(log.FieldEventType, event.Type).
		Msg("workflow task created")
	return nil
}

// substitute expands ${field} placeholders from the event payload.
// ${entity_id}, ${actor_id} and ${type} resolve from the envelope;
// everything else looks up the payload. Unknown fields expand to empty.
func substitute(template string, event domain.Event) string {
	if !strings.Contains(template, "${") {
		return template
	}

	var b strings.Builder
	rest := template
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "}")
		if end < 0 {
			b.WriteString(rest)
			break
		}

		b.WriteString(rest[:start])
		field := rest[start+2 : start+end]
		b.WriteString(resolveField(field, event))
		rest = rest[start+end+1:]
	}
	return b.String()
}

func resolveField(field string, event domain.Event) string {
	switch field {
	case "type":
		return event.Type
	case "entity_id":
		return event.EntityID
	case "actor_id":
		return event.ActorID
	}
	if v, ok := event.Payload[field]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}
