package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
)

// GormCalendarRepository implements CalendarRepository using GORM.
type GormCalendarRepository struct {
	db *gorm.DB
}

// NewGormCalendarRepository creates a new GORM-based calendar repository.
func NewGormCalendarRepository(db *gorm.DB) *GormCalendarRepository {
	return &GormCalendarRepository{db: db}
}

// Create inserts a new calendar event.
func (r *GormCalendarRepository) Create(ctx context.Context, event *domain.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	return r.db.WithContext(ctx).Create(event).Error
}

// List retrieves events in the filter window, ordered by start date.
func (r *GormCalendarRepository) List(ctx context.Context, filter domain.EventFilter) ([]domain.CalendarEvent, error) {
	query := r.db.WithContext(ctx).Model(&domain.CalendarEvent{})
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.StartDate != nil {
		query = query.Where("start_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("start_date <= ?", *filter.EndDate)
	}

	var events []domain.CalendarEvent
	if err := query.Order("start_date ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Update replaces mutable event fields.
func (r *GormCalendarRepository) Update(ctx context.Context, event *domain.CalendarEvent) error {
	result := r.db.WithContext(ctx).Model(&domain.CalendarEvent{}).
		Where("id = ?", event.ID).
		Select("*").Omit("id", "created_at", "created_by").
		Updates(event)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Delete removes a calendar event.
func (r *GormCalendarRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.CalendarEvent{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}
