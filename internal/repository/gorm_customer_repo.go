package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/log"
)

// GormCustomerRepository implements CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GORM-based customer repository.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Create creates a new customer.
func (r *GormCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	if customer.Status == "" {
		customer.Status = domain.CustomerStatusLead
	}

	result := r.db.WithContext(ctx).Create(customer)
	if result.Error != nil {
		log.Ctx(ctx).Error().Err(result.Error).Msg("failed to create customer in db")
		return result.Error
	}
	return nil
}

// GetByID retrieves a customer by ID.
func (r *GormCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var customer domain.Customer
	result := r.db.WithContext(ctx).First(&customer, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, result.Error
	}
	return &customer, nil
}

// List retrieves customers matching the filter, paginated.
func (r *GormCustomerRepository) List(ctx context.Context, filter domain.CustomerFilter) (*domain.CustomerPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 10
	}

	query := r.db.WithContext(ctx).Model(&domain.Customer{})

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR company LIKE ?", pattern, pattern, pattern)
	}
	if filter.Industry != "" {
		query = query.Where("industry = ?", filter.Industry)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	var customers []domain.Customer
	if err := query.Order("created_at DESC").Offset(offset).Limit(filter.PageSize).Find(&customers).Error; err != nil {
		return nil, err
	}

	return &domain.CustomerPage{
		Customers: customers,
		Total:     int(total),
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	}, nil
}

// Target retrieves customers matching campaign targeting filters.
// A limit of 0 means unbounded.
func (r *GormCustomerRepository) Target(ctx context.Context, filters domain.TargetFilters, limit int) ([]domain.Customer, error) {
	query := r.db.WithContext(ctx).Model(&domain.Customer{})

	if len(filters.Industries) > 0 {
		query = query.Where("industry IN ?", filters.Industries)
	}
	if len(filters.Locations) > 0 {
		query = query.Where("location IN ?", filters.Locations)
	}
	if filters.LastContactDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -filters.LastContactDays)
		query = query.Where("last_contact_date < ?", cutoff)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var customers []domain.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// Update updates a customer.
func (r *GormCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	result := r.db.WithContext(ctx).Model(&domain.Customer{}).
		Where("id = ?", customer.ID).
		Select("*").Omit("id", "created_at", "created_by").
		Updates(customer)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// Delete removes a customer.
func (r *GormCustomerRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&domain.Customer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// TouchLastContact refreshes a customer's last_contact_date.
func (r *GormCustomerRepository) TouchLastContact(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Customer{}).
		Where("id = ?", id).
		Update("last_contact_date", at).Error
}
