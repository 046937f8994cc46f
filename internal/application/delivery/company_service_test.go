package delivery

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/shared"
)

func TestCompanyService_Create(t *testing.T) {
	repo := new(MockCompanyRepository)
	service := NewCompanyService(repo, nil)

	repo.On("ExistsByCode", mock.Anything, "FAST").Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*delivery.DeliveryCompany")).Return(nil)

	resp, err := service.Create(context.Background(), CreateCompanyRequest{
		Code: "FAST",
		Name: "Fast Courier",
		API: domain.APIConfiguration{
			BaseURL:    "https://api.fastcourier.example/orders",
			Format:     domain.ProtocolREST,
			AuthMethod: domain.AuthBearer,
			Credentials: domain.Credentials{
				Token: "secret-token",
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "FAST", resp.Code)
	assert.True(t, resp.IsActive)
	assert.True(t, resp.API.HasCredentials)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "ClearDefault", mock.Anything, mock.Anything)
}

func TestCompanyService_Create_DuplicateCode(t *testing.T) {
	repo := new(MockCompanyRepository)
	service := NewCompanyService(repo, nil)

	repo.On("ExistsByCode", mock.Anything, "FAST").Return(true, nil)

	_, err := service.Create(context.Background(), CreateCompanyRequest{Code: "FAST", Name: "Fast Courier"})
	assert.ErrorIs(t, err, domain.ErrCompanyCodeTaken)
}

func TestCompanyService_Create_DefaultClearsOthers(t *testing.T) {
	repo := new(MockCompanyRepository)
	service := NewCompanyService(repo, nil)

	var savedID uuid.UUID
	repo.On("ExistsByCode", mock.Anything, "FAST").Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*delivery.DeliveryCompany")).
		Run(func(args mock.Arguments) {
			savedID = args.Get(1).(*domain.DeliveryCompany).ID
		}).Return(nil)
	repo.On("ClearDefault", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)

	resp, err := service.Create(context.Background(), CreateCompanyRequest{
		Code:      "FAST",
		Name:      "Fast Courier",
		IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.IsDefault)
	repo.AssertCalled(t, "ClearDefault", mock.Anything, savedID)
}

func TestCompanyService_Create_InvalidConfiguration(t *testing.T) {
	repo := new(MockCompanyRepository)
	service := NewCompanyService(repo, nil)

	repo.On("ExistsByCode", mock.Anything, "FAST").Return(false, nil)

	_, err := service.Create(context.Background(), CreateCompanyRequest{
		Code: "FAST",
		Name: "Fast Courier",
		API:  domain.APIConfiguration{BaseURL: "https://x.example", Format: "carrier-pigeon"},
	})
	assert.ErrorIs(t, err, domain.ErrConfigurationInvalid)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCompanyService_Update_Partial(t *testing.T) {
	repo := new(MockCompanyRepository)
	service := NewCompanyService(repo, nil)

	company, _ := domain.NewDeliveryCompany("FAST", "Fast Courier")
	repo.On("FindByID", mock.Anything, company.ID).Return(company, nil)
	repo.On("Save", mock.Anything, company).Return(nil)

	inactive := false
	name := "Fast Courier Intl"
	resp, err := service.Update(context.Background(), company.ID, UpdateCompanyRequest{
		Name:     &name,
		IsActive: &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, "Fast Courier Intl", resp.Name)
	assert.False(t, resp.IsActive)
	// Untouched fields keep their values.
	assert.Equal(t, "FAST", resp.Code)
}

func TestCompanyService_SetDefault(t *testing.T) {
	repo := new(MockCompanyRepository)
	service := NewCompanyService(repo, nil)

	company, _ := domain.NewDeliveryCompany("FAST", "Fast Courier")
	repo.On("FindByID", mock.Anything, company.ID).Return(company, nil)
	repo.On("Save", mock.Anything, company).Return(nil)
	repo.On("ClearDefault", mock.Anything, company.ID).Return(nil)

	resp, err := service.SetDefault(context.Background(), company.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsDefault)
	repo.AssertExpectations(t)
}

func TestCompanyService_List(t *testing.T) {
	repo := new(MockCompanyRepository)
	service := NewCompanyService(repo, nil)

	a, _ := domain.NewDeliveryCompany("FAST", "Fast Courier")
	b, _ := domain.NewDeliveryCompany("SLOW", "Slow Courier")

	repo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).Return([]domain.DeliveryCompany{*a, *b}, nil)
	repo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(int64(2), nil)

	page, err := service.List(context.Background(), CompanyListFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)

	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "FAST", page.Items[0].Code)

	filter := repo.Calls[0].Arguments.Get(1).(shared.Filter)
	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 20, filter.PageSize)
}

func TestCompanyService_ValidateConfiguration(t *testing.T) {
	repo := new(MockCompanyRepository)
	hub := &domain.Hub{BaseURL: "https://hub.example/jsonrpc"}
	service := NewCompanyService(repo, hub)

	company, _ := domain.NewDeliveryCompany("FAST", "Fast Courier")
	company.API.AuthMethod = domain.AuthBearer // no token configured
	repo.On("FindByID", mock.Anything, company.ID).Return(company, nil)

	resp, err := service.ValidateConfiguration(context.Background(), company.ID)
	require.NoError(t, err)

	assert.False(t, resp.OK)
	assert.Contains(t, resp.Issues, domain.IssueMissingBearerToken)
	// The hub URL makes the company live despite its own empty URL.
	assert.Equal(t, domain.ModeLive, resp.Mode)
	assert.Equal(t, hub.BaseURL, resp.URL)
}

func TestCompanyService_Delete_NotFound(t *testing.T) {
	repo := new(MockCompanyRepository)
	service := NewCompanyService(repo, nil)

	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, domain.ErrCompanyNotFound)

	err := service.Delete(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
