package delivery

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domain "github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/shared"
)

// CompanyService manages delivery company configurations.
type CompanyService struct {
	companies domain.DeliveryCompanyRepository
	hub       *domain.Hub
}

// NewCompanyService creates a CompanyService. hub may be nil.
func NewCompanyService(companies domain.DeliveryCompanyRepository, hub *domain.Hub) *CompanyService {
	return &CompanyService{companies: companies, hub: hub}
}

// Create registers a new delivery company. The code must be unique; marking
// the company default clears the flag on every other company.
func (s *CompanyService) Create(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	taken, err := s.companies.ExistsByCode(ctx, strings.TrimSpace(req.Code))
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrCompanyCodeTaken
	}

	company, err := domain.NewDeliveryCompany(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	company.IsDefault = req.IsDefault
	company.AutoDispatch = req.AutoDispatch
	company.AutoDispatchStatuses = req.AutoDispatchStatuses
	if req.API.Format != "" || req.API.BaseURL != "" {
		company.API = req.API
	}
	if company.API.Format == "" {
		company.API.Format = domain.ProtocolREST
	}
	company.FieldMappings = req.FieldMappings
	company.LegacyFieldMapping = req.LegacyFieldMapping
	company.StatusMappings = req.StatusMappings
	company.CustomFields = req.CustomFields

	if err := company.Validate(); err != nil {
		return nil, err
	}
	if err := s.companies.Save(ctx, company); err != nil {
		return nil, err
	}
	if company.IsDefault {
		if err := s.companies.ClearDefault(ctx, company.ID); err != nil {
			return nil, err
		}
	}

	resp := ToCompanyResponse(company)
	return &resp, nil
}

// Update applies partial changes to a company.
func (s *CompanyService) Update(ctx context.Context, id uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		company.Name = strings.TrimSpace(*req.Name)
	}
	if req.IsActive != nil {
		company.IsActive = *req.IsActive
	}
	if req.IsDefault != nil {
		company.IsDefault = *req.IsDefault
	}
	if req.AutoDispatch != nil {
		company.AutoDispatch = *req.AutoDispatch
	}
	if req.AutoDispatchStatuses != nil {
		company.AutoDispatchStatuses = *req.AutoDispatchStatuses
	}
	if req.API != nil {
		company.API = *req.API
	}
	if req.FieldMappings != nil {
		company.FieldMappings = *req.FieldMappings
	}
	if req.LegacyFieldMapping != nil {
		company.LegacyFieldMapping = *req.LegacyFieldMapping
	}
	if req.StatusMappings != nil {
		company.StatusMappings = *req.StatusMappings
	}
	if req.CustomFields != nil {
		company.CustomFields = *req.CustomFields
	}

	if err := company.Validate(); err != nil {
		return nil, err
	}
	if err := s.companies.Save(ctx, company); err != nil {
		return nil, err
	}
	if company.IsDefault {
		if err := s.companies.ClearDefault(ctx, company.ID); err != nil {
			return nil, err
		}
	}

	resp := ToCompanyResponse(company)
	return &resp, nil
}

// GetByID retrieves one company.
func (s *CompanyService) GetByID(ctx context.Context, id uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCompanyResponse(company)
	return &resp, nil
}

// GetByCode retrieves one company by its unique code.
func (s *CompanyService) GetByCode(ctx context.Context, code string) (*CompanyResponse, error) {
	company, err := s.companies.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	resp := ToCompanyResponse(company)
	return &resp, nil
}

// List retrieves companies with filtering and pagination.
func (s *CompanyService) List(ctx context.Context, filter CompanyListFilter) (shared.Paginated[CompanyResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.IsActive != nil {
		domainFilter.Filters["is_active"] = *filter.IsActive
	}

	companies, err := s.companies.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[CompanyResponse]{}, err
	}
	total, err := s.companies.Count(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[CompanyResponse]{}, err
	}

	items := make([]CompanyResponse, len(companies))
	for i := range companies {
		items[i] = ToCompanyResponse(&companies[i])
	}
	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize), nil
}

// SetDefault marks one company as the dispatch default and clears the flag
// everywhere else.
func (s *CompanyService) SetDefault(ctx context.Context, id uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	company.IsDefault = true
	if err := s.companies.Save(ctx, company); err != nil {
		return nil, err
	}
	if err := s.companies.ClearDefault(ctx, company.ID); err != nil {
		return nil, err
	}
	resp := ToCompanyResponse(company)
	return &resp, nil
}

// Delete removes a company configuration. Orders already assigned keep
// their company reference.
func (s *CompanyService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.companies.FindByID(ctx, id); err != nil {
		return err
	}
	return s.companies.Delete(ctx, id)
}

// ValidateConfiguration runs the pre-flight configuration check for one
// company, including the hub override.
func (s *CompanyService) ValidateConfiguration(ctx context.Context, id uuid.UUID) (*ConfigValidationResponse, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := domain.ValidateCompanyConfiguration(company, s.hub)
	return &ConfigValidationResponse{
		OK:     result.OK,
		Mode:   result.Mode,
		URL:    result.URL,
		Issues: result.Issues,
	}, nil
}
