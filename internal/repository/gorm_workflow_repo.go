package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
)

// GormWorkflowRepository implements WorkflowRepository using GORM.
type GormWorkflowRepository struct {
	db *gorm.DB
}

// NewGormWorkflowRepository creates a new GORM-based workflow repository.
func NewGormWorkflowRepository(db *gorm.DB) *GormWorkflowRepository {
	return &GormWorkflowRepository{db: db}
}

// CreateRule inserts a new workflow rule.
func (r *GormWorkflowRepository) CreateRule(ctx context.Context, rule *domain.WorkflowRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	return r.db.WithContext(ctx).Create(rule).Error
}

// ListRules retrieves all workflow rules, newest first.
func (r *GormWorkflowRepository) ListRules(ctx context.Context) ([]domain.WorkflowRule, error) {
	var rules []domain.WorkflowRule
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// ListActiveRules retrieves active rules bound to one trigger type.
func (r *GormWorkflowRepository) ListActiveRules(ctx context.Context, triggerType string) ([]domain.WorkflowRule, error) {
	var rules []domain.WorkflowRule
	err := r.db.WithContext(ctx).
		Where("trigger_type = ? AND is_active = ?", triggerType, true).
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// UpdateRule replaces mutable rule fields.
func (r *GormWorkflowRepository) UpdateRule(ctx context.Context, rule *domain.WorkflowRule) error {
	result := r.db.WithContext(ctx).Model(&domain.WorkflowRule{}).
		Where("id = ?", rule.ID).
		Select("*").Omit("id", "created_at", "created_by").
		Updates(rule)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// DeleteRule removes a workflow rule.
func (r *GormWorkflowRepository) DeleteRule(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.WorkflowRule{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// CreateTask inserts a task produced by a workflow action.
func (r *GormWorkflowRepository) CreateTask(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}

	return r.db.WithContext(ctx).Create(task).Error
}

// ListTasks retrieves tasks, optionally scoped to one assignee.
func (r *GormWorkflowRepository) ListTasks(ctx context.Context, assignedTo string) ([]domain.Task, error) {
	query := r.db.WithContext(ctx).Model(&domain.Task{})
	if assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}

	var tasks []domain.Task
	if err := query.Order("due_date ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
