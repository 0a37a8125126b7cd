package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
)

// GormActivityRepository implements ActivityRepository using GORM.
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GORM-based activity repository.
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// RecordUserActivity appends one user activity row.
func (r *GormActivityRepository) RecordUserActivity(ctx context.Context, activity *domain.UserActivity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}

	return r.db.WithContext(ctx).Create(activity).Error
}

// ListUserActivities retrieves an activity trail, newest first,
// optionally narrowed to specific activity types. An empty userID spans
// all users (admin views).
func (r *GormActivityRepository) ListUserActivities(ctx context.Context, userID string, types []string) ([]domain.UserActivity, error) {
	query := r.db.WithContext(ctx).Model(&domain.UserActivity{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if len(types) > 0 {
		query = query.Where("activity_type IN ?", types)
	}

	var activities []domain.UserActivity
	if err := query.Order("created_at DESC").Limit(100).Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// RecordCustomerActivity appends one customer activity row.
func (r *GormActivityRepository) RecordCustomerActivity(ctx context.Context, activity *domain.CustomerActivity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}

	return r.db.WithContext(ctx).Create(activity).Error
}

// ListCustomerActivities retrieves a customer's activity trail, newest
// first, optionally narrowed to one activity type.
func (r *GormActivityRepository) ListCustomerActivities(ctx context.Context, customerID, activityType string) ([]domain.CustomerActivity, error) {
	query := r.db.WithContext(ctx).Model(&domain.CustomerActivity{}).Where("customer_id = ?", customerID)
	if activityType != "" {
		query = query.Where("activity_type = ?", activityType)
	}

	var activities []domain.CustomerActivity
	if err := query.Order("created_at DESC").Limit(100).Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
