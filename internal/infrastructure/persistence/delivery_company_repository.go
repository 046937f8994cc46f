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

// GormDeliveryCompanyRepository implements DeliveryCompanyRepository using GORM
type GormDeliveryCompanyRepository struct {
	db *gorm.DB
}

// NewGormDeliveryCompanyRepository creates a new GormDeliveryCompanyRepository
func NewGormDeliveryCompanyRepository(db *gorm.DB) *GormDeliveryCompanyRepository {
	return &GormDeliveryCompanyRepository{db: db}
}

var _ delivery.DeliveryCompanyRepository = (*GormDeliveryCompanyRepository)(nil)

// FindByID finds a delivery company by its ID
func (r *GormDeliveryCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*delivery.DeliveryCompany, error) {
	var model models.DeliveryCompanyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, delivery.ErrCompanyNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a delivery company by its unique code
func (r *GormDeliveryCompanyRepository) FindByCode(ctx context.Context, code string) (*delivery.DeliveryCompany, error) {
	var model models.DeliveryCompanyModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.TrimSpace(code)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, delivery.ErrCompanyNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns delivery companies matching the filter
func (r *GormDeliveryCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]delivery.DeliveryCompany, error) {
	var companyModels []models.DeliveryCompanyModel
	query := r.applyCompanyFilter(r.db.WithContext(ctx), filter)
	if err := query.Find(&companyModels).Error; err != nil {
		return nil, err
	}

	companies := make([]delivery.DeliveryCompany, len(companyModels))
	for i, model := range companyModels {
		companies[i] = *model.ToDomain()
	}
	return companies, nil
}

// Count returns the number of delivery companies matching the filter
func (r *GormDeliveryCompanyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyCompanyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.DeliveryCompanyModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindDefault returns the company flagged as the default dispatch target
func (r *GormDeliveryCompanyRepository) FindDefault(ctx context.Context) (*delivery.DeliveryCompany, error) {
	var model models.DeliveryCompanyModel
	if err := r.db.WithContext(ctx).
		Where("is_default = ?", true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, delivery.ErrCompanyNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAutoDispatchCandidate returns the first active auto-dispatch company
// whose configured statuses include the given order status. An empty status
// list means the company accepts every status; that check happens on the
// JSONB document in Go since the candidate set is small.
func (r *GormDeliveryCompanyRepository) FindAutoDispatchCandidate(ctx context.Context, orderStatus string) (*delivery.DeliveryCompany, error) {
	var companyModels []models.DeliveryCompanyModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND auto_dispatch = ?", true, true).
		Order("is_default DESC, created_at ASC").
		Find(&companyModels).Error; err != nil {
		return nil, err
	}

	for _, model := range companyModels {
		company := model.ToDomain()
		if company.AutoDispatchEligible(orderStatus) {
			return company, nil
		}
	}
	return nil, delivery.ErrCompanyNotFound
}

// ExistsByCode reports whether a company with the given code exists
func (r *GormDeliveryCompanyRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DeliveryCompanyModel{}).
		Where("code = ?", strings.TrimSpace(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a delivery company
func (r *GormDeliveryCompanyRepository) Save(ctx context.Context, company *delivery.DeliveryCompany) error {
	var model models.DeliveryCompanyModel
	model.FromDomain(company)
	return r.db.WithContext(ctx).Save(&model).Error
}

// ClearDefault unsets the default flag on every company except the given one
func (r *GormDeliveryCompanyRepository) ClearDefault(ctx context.Context, exceptID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliveryCompanyModel{}).
		Where("is_default = ? AND id <> ?", true, exceptID).
		Update("is_default", false).Error
}

// Delete removes a delivery company
func (r *GormDeliveryCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DeliveryCompanyModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return delivery.ErrCompanyNotFound
	}
	return nil
}

// applyCompanyFilter applies filter options including pagination
func (r *GormDeliveryCompanyRepository) applyCompanyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyCompanyFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, DeliveryCompanySortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query.Offset(filter.Offset()).Limit(filter.Limit())
}

// applyCompanyFilterWithoutPagination applies search and field filters only
func (r *GormDeliveryCompanyRepository) applyCompanyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", search, search)
	}

	for key, value := range filter.Filters {
		switch key {
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "is_default":
			query = query.Where("is_default = ?", value)
		case "auto_dispatch":
			query = query.Where("auto_dispatch = ?", value)
		}
	}

	return query
}
