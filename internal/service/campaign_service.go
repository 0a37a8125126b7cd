package service

import (
	"context"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/events"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
)

// targetLimit caps how many customers one targeting pass can attach.
const targetLimit = 1000

// CampaignService covers marketing campaigns: CRUD, audience targeting
// and per-recipient delivery state.
type CampaignService struct {
	campaigns repository.CampaignRepository
	customers repository.CustomerRepository
	producer  events.Producer
}

// NewCampaignService creates the campaign service.
func NewCampaignService(campaigns repository.CampaignRepository, customers repository.CustomerRepository, producer events.Producer) *CampaignService {
	return &CampaignService{campaigns: campaigns, customers: customers, producer: producer}
}

// Create inserts a campaign, targets its audience from the stored
// filters and publishes campaign_created.
func (s *CampaignService) Create(ctx context.Context, campaign *domain.Campaign, filters domain.TargetFilters, actorID string) error {
	campaign.CreatedBy = actorID
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return err
	}

	count, err := s.Target(ctx, campaign.ID, filters)
	if err != nil {
		log.L().Warn().Err(err).Msg("campaign targeting failed")
	}

	event := events.NewEvent(domain.EventCampaignCreated, campaign.ID, actorID, map[string]interface{}{
		"name":       campaign.Name,
		"type":       campaign.Type,
		"recipients": count,
	})
	if err := s.producer.Publish(ctx, event); err != nil {
		log.L().Warn().Err(err).Str(log.FieldEventType, domain.EventCampaignCreated).Msg("event publish failed")
	}
	return nil
}

// List returns all campaigns.
func (s *CampaignService) List(ctx context.Context) ([]domain.Campaign, error) {
	return s.campaigns.List(ctx)
}

// Detail returns a campaign with recipient statistics and the hydrated
// recipient list.
func (s *CampaignService) Detail(ctx context.Context, id string) (*domain.CampaignDetail, error) {
	campaign, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.campaigns.ListRecipients(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &domain.CampaignDetail{
		Campaign:   *campaign,
		Recipients: make([]domain.Recipient, 0, len(rows)),
	}
	for _, row := range rows {
		detail.TotalRecipients++
		switch row.Status {
		case domain.RecipientStatusSent:
			detail.SentCount++
		case domain.RecipientStatusOpened:
			detail.OpenedCount++
		case domain.RecipientStatusClicked:
			detail.ClickedCount++
		}

		recipient := domain.Recipient{Status: row.Status, UpdatedAt: row.UpdatedAt}
		if customer, err := s.customers.GetByID(ctx, row.CustomerID); err == nil {
			recipient.CustomerRef = customer.Ref()
		} else {
			recipient.CustomerRef = domain.CustomerRef{ID: row.CustomerID}
		}
		detail.Recipients = append(detail.Recipients, recipient)
	}

	return detail, nil
}

// Update replaces mutable campaign fields.
func (s *CampaignService) Update(ctx context.Context, campaign *domain.Campaign) error {
	return s.campaigns.Update(ctx, campaign)
}

// Delete removes a campaign and its recipient rows.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	return s.campaigns.Delete(ctx, id)
}

// Target selects customers matching the filters and attaches them to the
// campaign as pending recipients. Returns the number of matched
// customers; re-targeting never resets existing delivery state.
func (s *CampaignService) Target(ctx context.Context, campaignID string, filters domain.TargetFilters) (int, error) {
	customers, err := s.customers.Target(ctx, filters, targetLimit)
	if err != nil {
		return 0, err
	}
	if len(customers) == 0 {
		return 0, nil
	}

	recipients := make([]domain.CampaignCustomer, 0, len(customers))
	for _, customer := range customers {
		recipients = append(recipients, domain.CampaignCustomer{
			CampaignID: campaignID,
			CustomerID: customer.ID,
			Status:     domain.RecipientStatusPending,
		})
	}

	if err := s.campaigns.UpsertRecipients(ctx, recipients); err != nil {
		return 0, err
	}
	return len(customers), nil
}

// TrackRecipient records a delivery transition (sent, opened, clicked)
// for one recipient.
func (s *CampaignService) TrackRecipient(ctx context.Context, campaignID, customerID, status string) error {
	return s.campaigns.UpdateRecipientStatus(ctx, campaignID, customerID, status)
}
