package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ delivery.OrderRepository = (*GormOrderRepository)(nil)

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*delivery.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, delivery.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its storefront order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*delivery.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("order_number = ?", strings.TrimSpace(orderNumber)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, delivery.ErrOrderNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]delivery.Order, error) {
	var orderModels []models.OrderModel
	query := r.applyOrderFilter(r.db.WithContext(ctx), filter)
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]delivery.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// Count returns the number of orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyOrderFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an order
func (r *GormOrderRepository) Save(ctx context.Context, order *delivery.Order) error {
	var model models.OrderModel
	model.FromDomain(order)
	return r.db.WithContext(ctx).Save(&model).Error
}

// applyOrderFilter applies filter options including pagination
func (r *GormOrderRepository) applyOrderFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyOrderFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query.Offset(filter.Offset()).Limit(filter.Limit())
}

// applyOrderFilterWithoutPagination applies search and field filters only
func (r *GormOrderRepository) applyOrderFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where(
			"order_number ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR tracking_number ILIKE ?",
			search, search, search, search,
		)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "delivery_status":
			query = query.Where("delivery_status = ?", value)
		case "delivery_company_id":
			query = query.Where("delivery_company_id = ?", value)
		case "unassigned":
			if flag, ok := value.(bool); ok && flag {
				query = query.Where("delivery_company_id IS NULL")
			}
		}
	}

	return query
}
