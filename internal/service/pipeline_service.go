package service

import (
	"context"
	"errors"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/audit"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/database"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/events"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
)

// ErrUnknownStage rejects stage transitions to names outside the funnel.
var ErrUnknownStage = errors.New("unknown pipeline stage")

// forecastNoDateKey groups open deals without an expected close date.
const forecastNoDateKey = "no_date"

// PipelineService covers the deal book: CRUD, stage transitions and the
// statistics/forecast rollups.
type PipelineService struct {
	deals      repository.DealRepository
	activities repository.ActivityRepository
	producer   events.Producer
}

// NewPipelineService creates the pipeline service.
func NewPipelineService(deals repository.DealRepository, activities repository.ActivityRepository, producer events.Producer) *PipelineService {
	return &PipelineService{deals: deals, activities: activities, producer: producer}
}

// Create inserts a deal and records it on the customer's trail.
func (s *PipelineService) Create(ctx context.Context, deal *domain.Deal, actorID string) error {
	if deal.Stage != "" && !domain.ValidStage(deal.Stage) {
		return ErrUnknownStage
	}
	deal.CreatedBy = actorID
	if err := s.deals.Create(ctx, deal); err != nil {
		return err
	}

	s.recordCustomerActivity(ctx, deal.CustomerID, domain.CustomerActivityDealCreated, actorID, database.JSONMap{
		"deal_id": deal.ID,
		"title":   deal.Title,
		"value":   deal.Value,
	})
	return nil
}

// Get retrieves one deal.
func (s *PipelineService) Get(ctx context.Context, id string) (*domain.Deal, error) {
	return s.deals.GetByID(ctx, id)
}

// List returns deals, optionally scoped to one assignee.
func (s *PipelineService) List(ctx context.Context, assignedTo string) ([]domain.Deal, error) {
	return s.deals.List(ctx, assignedTo)
}

// Update replaces mutable deal fields.
func (s *PipelineService) Update(ctx context.Context, deal *domain.Deal) error {
	if deal.Stage != "" && !domain.ValidStage(deal.Stage) {
		return ErrUnknownStage
	}
	return s.deals.Update(ctx, deal)
}

// Delete removes a deal.
func (s *PipelineService) Delete(ctx context.Context, id string) error {
	return s.deals.Delete(ctx, id)
}

// ChangeStage moves a deal through the funnel, publishes
// deal_stage_changed and records the move on the customer's trail.
func (s *PipelineService) ChangeStage(ctx context.Context, id, stage, actorID string) (*domain.Deal, error) {
	if !domain.ValidStage(stage) {
		return nil, ErrUnknownStage
	}

	deal, err := s.deals.UpdateStage(ctx, id, stage)
	if err != nil {
		return nil, err
	}

	s.recordCustomerActivity(ctx, deal.CustomerID, domain.CustomerActivityStageChanged, actorID, database.JSONMap{
		"deal_id": deal.ID,
		"stage":   stage,
	})
	audit.LogWithTarget(ctx, audit.ActionDealStageChanged, actorID, deal.ID, "deal stage changed to "+stage)

	event := events.NewEvent(domain.EventDealStageChange, deal.ID, actorID, map[string]interface{}{
		"customer_id": deal.CustomerID,
		"stage":       stage,
		"value":       deal.Value,
	})
	if err := s.producer.Publish(ctx, event); err != nil {
		log.L().Warn().Err(err).Str(log.FieldEventType, domain.EventDealStageChange).Msg("event publish failed")
	}

	return deal, nil
}

// Statistics rolls the whole deal book up by stage: counts, values and
// the won/lost win rate.
func (s *PipelineService) Statistics(ctx context.Context, assignedTo string) (*domain.PipelineStatistics, error) {
	deals, err := s.deals.List(ctx, assignedTo)
	if err != nil {
		return nil, err
	}

	stats := &domain.PipelineStatistics{
		ByStage: make(map[string]domain.StageBucket, len(domain.PipelineStages)),
	}
	for _, stage := range domain.PipelineStages {
		stats.ByStage[stage] = domain.StageBucket{}
	}

	for _, deal := range deals {
		stats.TotalDeals++
		stats.TotalValue += deal.Value

		bucket := stats.ByStage[deal.Stage]
		bucket.Count++
		bucket.Value += deal.Value
		stats.ByStage[deal.Stage] = bucket
	}

	won := stats.ByStage[domain.StageClosedWon].Count
	lost := stats.ByStage[domain.StageClosedLost].Count
	if won+lost > 0 {
		stats.WinRate = float64(won) / float64(won+lost)
	}

	return stats, nil
}

// Forecast weights every open deal's value by its stage probability and
// groups the sums by expected close month and by stage. Deals without an
// expected close date land in the no_date bucket.
func (s *PipelineService) Forecast(ctx context.Context, assignedTo string) (*domain.Forecast, error) {
	deals, err := s.deals.ListOpen(ctx, assignedTo)
	if err != nil {
		return nil, err
	}

	forecast := &domain.Forecast{
		ByMonth: make(map[string]domain.ForecastBucket),
		ByStage: make(map[string]domain.ForecastBucket),
	}

	for _, deal := range deals {
		weighted := deal.Value * domain.StageProbabilities[deal.Stage]
		forecast.TotalWeightedValue += weighted

		month := forecastNoDateKey
		if deal.ExpectedCloseDate != nil {
			month = deal.ExpectedCloseDate.Format("2006-01")
		}

		byMonth := forecast.ByMonth[month]
		byMonth.Count++
		byMonth.WeightedValue += weighted
		forecast.ByMonth[month] = byMonth

		byStage := forecast.ByStage[deal.Stage]
		byStage.Count++
		byStage.WeightedValue += weighted
		forecast.ByStage[deal.Stage] = byStage
	}

	return forecast, nil
}

func (s *PipelineService) recordCustomerActivity(ctx context.Context, customerID, activityType, actorID string, details database.JSONMap) {
	activity := &domain.CustomerActivity{
		CustomerID:   customerID,
		ActivityType: activityType,
		Details:      details,
		CreatedBy:    actorID,
	}
	if err := s.activities.RecordCustomerActivity(ctx, activity); err != nil {
		log.L().Warn().Err(err).Str("customer_id", customerID).Msg("record customer activity failed")
	}
}
