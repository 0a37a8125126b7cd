package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
)

// GormCampaignRepository implements CampaignRepository using GORM.
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewGormCampaignRepository creates a new GORM-based campaign repository.
func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// Create inserts a new campaign.
func (r *GormCampaignRepository) Create(ctx context.Context, campaign *domain.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = uuid.New().String()
	}

	return r.db.WithContext(ctx).Create(campaign).Error
}

// GetByID retrieves a campaign by ID.
func (r *GormCampaignRepository) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	var campaign domain.Campaign
	result := r.db.WithContext(ctx).First(&campaign, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, result.Error
	}
	return &campaign, nil
}

// List retrieves all campaigns, newest first.
func (r *GormCampaignRepository) List(ctx context.Context) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// Update replaces mutable campaign fields.
func (r *GormCampaignRepository) Update(ctx context.Context, campaign *domain.Campaign) error {
	result := r.db.WithContext(ctx).Model(&domain.Campaign{}).
		Where("id = ?", campaign.ID).
		Select("*").Omit("id", "created_at", "created_by").
		Updates(campaign)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}
	return nil
}

// Delete removes a campaign and its recipient rows.
func (r *GormCampaignRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.CampaignCustomer{}, "campaign_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Campaign{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCampaignNotFound
		}
		return nil
	})
}

// UpsertRecipients attaches targeted customers to a campaign. Existing
// rows keep their delivery status; re-targeting is idempotent.
func (r *GormCampaignRepository) UpsertRecipients(ctx context.Context, recipients []domain.CampaignCustomer) error {
	if len(recipients) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&recipients).Error
}

// ListRecipients retrieves a campaign's recipient rows.
func (r *GormCampaignRepository) ListRecipients(ctx context.Context, campaignID string) ([]domain.CampaignCustomer, error) {
	var recipients []domain.CampaignCustomer
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("created_at ASC").
		Find(&recipients).Error
	if err != nil {
		return nil, err
	}
	return recipients, nil
}

// UpdateRecipientStatus records a delivery transition for one recipient.
func (r *GormCampaignRepository) UpdateRecipientStatus(ctx context.Context, campaignID, customerID, status string) error {
	return r.db.WithContext(ctx).Model(&domain.CampaignCustomer{}).
		Where("campaign_id = ? AND customer_id = ?", campaignID, customerID).
		Updates(map[string]interface{}{
			"status":           status,
			"last_action_date": time.Now(),
		}).Error
}
