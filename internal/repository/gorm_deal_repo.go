package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
)

// GormDealRepository implements DealRepository using GORM.
type GormDealRepository struct {
	db *gorm.DB
}

// NewGormDealRepository creates a new GORM-based deal repository.
func NewGormDealRepository(db *gorm.DB) *GormDealRepository {
	return &GormDealRepository{db: db}
}

// Create inserts a new deal.
func (r *GormDealRepository) Create(ctx context.Context, deal *domain.Deal) error {
	if deal.ID == "" {
		deal.ID = uuid.New().String()
	}
	if deal.Stage == "" {
		deal.Stage = domain.StageLead
	}

	return r.db.WithContext(ctx).Create(deal).Error
}

// GetByID retrieves a deal by ID.
func (r *GormDealRepository) GetByID(ctx context.Context, id string) (*domain.Deal, error) {
	var deal domain.Deal
	result := r.db.WithContext(ctx).First(&deal, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, result.Error
	}
	return &deal, nil
}

// List retrieves deals, newest first, optionally scoped to one assignee.
func (r *GormDealRepository) List(ctx context.Context, assignedTo string) ([]domain.Deal, error) {
	query := r.db.WithContext(ctx).Model(&domain.Deal{})
	if assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}

	var deals []domain.Deal
	if err := query.Order("created_at DESC").Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

// ListOpen retrieves deals that are neither won nor lost. These are the
// deals that contribute to the weighted forecast.
func (r *GormDealRepository) ListOpen(ctx context.Context, assignedTo string) ([]domain.Deal, error) {
	query := r.db.WithContext(ctx).
		Where("stage NOT IN ?", []string{domain.StageClosedWon, domain.StageClosedLost})
	if assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}

	var deals []domain.Deal
	if err := query.Order("expected_close_date ASC").Find(&deals).Error; err != nil {
		return nil, err
	}
	return deals, nil
}

// Update replaces mutable deal fields.
func (r *GormDealRepository) Update(ctx context.Context, deal *domain.Deal) error {
	result := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Where("id = ?", deal.ID).
		Select("*").Omit("id", "created_at", "created_by").
		Updates(deal)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDealNotFound
	}
	return nil
}

// UpdateStage moves a deal to a new pipeline stage and returns the
// updated row.
func (r *GormDealRepository) UpdateStage(ctx context.Context, id, stage string) (*domain.Deal, error) {
	result := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stage":      stage,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrDealNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes a deal.
func (r *GormDealRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Deal{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDealNotFound
	}
	return nil
}
