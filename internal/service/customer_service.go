package service

import (
	"context"
	"errors"
	"time"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/audit"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/cache"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/database"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/events"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/repository"
)

// CustomerService covers the customer book: CRUD, assignment and the
// per-customer activity trail. Writes publish domain events and
// invalidate the read-through cache.
type CustomerService struct {
	customers  repository.CustomerRepository
	activities repository.ActivityRepository
	cache      *cache.RedisCache
	producer   events.Producer
}

// NewCustomerService creates the customer service. cache may be nil.
func NewCustomerService(
	customers repository.CustomerRepository,
	activities repository.ActivityRepository,
	c *cache.RedisCache,
	producer events.Producer,
) *CustomerService {
	return &CustomerService{
		customers:  customers,
		activities: activities,
		cache:      c,
		producer:   producer,
	}
}

// Create inserts a customer and publishes customer_created.
func (s *CustomerService) Create(ctx context.Context, customer *domain.Customer, actorID string) error {
	customer.CreatedBy = actorID
	if err := s.customers.Create(ctx, customer); err != nil {
		return err
	}

	s.publish(ctx, domain.EventCustomerCreated, customer.ID, actorID, map[string]interface{}{
		"name":     customer.Name,
		"industry": customer.Industry,
		"status":   customer.Status,
	})
	return nil
}

// Get retrieves a customer, serving from cache when possible.
func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	if s.cache != nil {
		customer, err := s.cache.GetCustomer(ctx, id)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.L().Warn().Err(err).Msg("customer cache read failed")
		}
	}

	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCustomer(ctx, customer); err != nil {
			log.L().Warn().Err(err).Msg("customer cache write failed")
		}
	}
	return customer, nil
}

// List returns one page of customers matching the filter.
func (s *CustomerService) List(ctx context.Context, filter domain.CustomerFilter) (*domain.CustomerPage, error) {
	return s.customers.List(ctx, filter)
}

// Update replaces customer fields, invalidates the cache and publishes
// customer_updated.
func (s *CustomerService) Update(ctx context.Context, customer *domain.Customer, actorID string) error {
	if err := s.customers.Update(ctx, customer); err != nil {
		return err
	}

	s.invalidate(ctx, customer.ID)
	s.publish(ctx, domain.EventCustomerUpdated, customer.ID, actorID, map[string]interface{}{
		"name":   customer.Name,
		"status": customer.Status,
	})
	return nil
}

// Delete removes a customer and invalidates the cache.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Assign hands a customer to an agent and records the assignment on the
// customer's activity trail.
func (s *CustomerService) Assign(ctx context.Context, customerID, agentID, assignedBy string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	customer.AssignedTo = agentID
	customer.AssignedBy = assignedBy
	customer.AssignmentDate = &now

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	s.invalidate(ctx, customerID)

	s.recordActivity(ctx, customerID, domain.CustomerActivityAssigned, assignedBy, database.JSONMap{
		"assigned_to": agentID,
	})
	audit.LogWithTarget(ctx, audit.ActionCustomerAssigned, assignedBy, customerID, "customer assigned")
	return customer, nil
}

// Activities returns a customer's recent activity trail.
func (s *CustomerService) Activities(ctx context.Context, customerID, activityType string) ([]domain.CustomerActivity, error) {
	return s.activities.ListCustomerActivities(ctx, customerID, activityType)
}

// RecordActivity appends one entry to a customer's activity trail.
func (s *CustomerService) RecordActivity(ctx context.Context, customerID, activityType, actorID string, details database.JSONMap) {
	s.recordActivity(ctx, customerID, activityType, actorID, details)
}

func (s *CustomerService) recordActivity(ctx context.Context, customerID, activityType, actorID string, details database.JSONMap) {
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

func (s *CustomerService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCustomer(ctx, id); err != nil {
		log.L().Warn().Err(err).Msg("customer cache invalidation failed")
	}
}

func (s *CustomerService) publish(ctx context.Context, eventType, entityID, actorID string, payload map[string]interface{}) {
	event := events.NewEvent(eventType, entityID, actorID, payload)
	if err := s.producer.Publish(ctx, event); err != nil {
		log.L().Warn().Err(err).Str(log.FieldEventType, eventType).Msg("event publish failed")
	}
}
