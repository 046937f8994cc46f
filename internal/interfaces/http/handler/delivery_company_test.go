package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appdelivery "github.com/storefront/backend/internal/application/delivery"
	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// MockDeliveryCompanyRepository implements delivery.DeliveryCompanyRepository for testing
type MockDeliveryCompanyRepository struct {
	mock.Mock
}

func (m *MockDeliveryCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*delivery.DeliveryCompany, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.DeliveryCompany), args.Error(1)
}

func (m *MockDeliveryCompanyRepository) FindByCode(ctx context.Context, code string) (*delivery.DeliveryCompany, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.DeliveryCompany), args.Error(1)
}

func (m *MockDeliveryCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]delivery.DeliveryCompany, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]delivery.DeliveryCompany), args.Error(1)
}

func (m *MockDeliveryCompanyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeliveryCompanyRepository) FindDefault(ctx context.Context) (*delivery.DeliveryCompany, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.DeliveryCompany), args.Error(1)
}

func (m *MockDeliveryCompanyRepository) FindAutoDispatchCandidate(ctx context.Context, orderStatus string) (*delivery.DeliveryCompany, error) {
	args := m.Called(ctx, orderStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.DeliveryCompany), args.Error(1)
}

func (m *MockDeliveryCompanyRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeliveryCompanyRepository) Save(ctx context.Context, company *delivery.DeliveryCompany) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockDeliveryCompanyRepository) ClearDefault(ctx context.Context, exceptID uuid.UUID) error {
	args := m.Called(ctx, exceptID)
	return args.Error(0)
}

func (m *MockDeliveryCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOrderRepository implements delivery.OrderRepository for testing
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*delivery.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*delivery.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]delivery.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]delivery.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *delivery.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockCourierGateway implements delivery.CourierGateway for testing
type MockCourierGateway struct {
	mock.Mock
}

func (m *MockCourierGateway) Send(ctx context.Context, req *delivery.CourierRequest) (*delivery.DispatchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.DispatchResult), args.Error(1)
}

// stubTransactionScope runs the function against the same repositories
// without a real transaction
type stubTransactionScope struct {
	orders    delivery.OrderRepository
	companies delivery.DeliveryCompanyRepository
}

func (s *stubTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context, repos appdelivery.Repositories) error) error {
	return fn(ctx, appdelivery.Repositories{Orders: s.orders, Companies: s.companies})
}

// Test setup helpers

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func setupCompanyHandler(repo *MockDeliveryCompanyRepository) *DeliveryCompanyHandler {
	return NewDeliveryCompanyHandler(appdelivery.NewCompanyService(repo, nil))
}

func createTestCompany() *delivery.DeliveryCompany {
	company, _ := delivery.NewDeliveryCompany("fast", "Fast Delivery")
	company.API.BaseURL = "https://api.fast.example/orders"
	return company
}

// Tests

func TestDeliveryCompanyHandler_Create_Success(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	repo.On("ExistsByCode", mock.Anything, "fast").Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*delivery.DeliveryCompany")).Return(nil)

	router := setupTestRouter()
	router.POST("/delivery/companies", handler.Create)

	body, _ := json.Marshal(appdelivery.CreateCompanyRequest{
		Code: "fast",
		Name: "Fast Delivery",
	})

	req := httptest.NewRequest(http.MethodPost, "/delivery/companies", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "fast", data["code"])
	repo.AssertExpectations(t)
}

func TestDeliveryCompanyHandler_Create_DuplicateCode(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	repo.On("ExistsByCode", mock.Anything, "fast").Return(true, nil)

	router := setupTestRouter()
	router.POST("/delivery/companies", handler.Create)

	body, _ := json.Marshal(appdelivery.CreateCompanyRequest{
		Code: "fast",
		Name: "Fast Delivery",
	})

	req := httptest.NewRequest(http.MethodPost, "/delivery/companies", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeAlreadyExists, resp.Error.Code)
	repo.AssertExpectations(t)
}

func TestDeliveryCompanyHandler_Create_InvalidJSON(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	router := setupTestRouter()
	router.POST("/delivery/companies", handler.Create)

	req := httptest.NewRequest(http.MethodPost, "/delivery/companies", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeliveryCompanyHandler_GetByID_Success(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	company := createTestCompany()
	repo.On("FindByID", mock.Anything, company.ID).Return(company, nil)

	router := setupTestRouter()
	router.GET("/delivery/companies/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/delivery/companies/"+company.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestDeliveryCompanyHandler_GetByID_NotFound(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	companyID := uuid.New()
	repo.On("FindByID", mock.Anything, companyID).Return(nil, delivery.ErrCompanyNotFound)

	router := setupTestRouter()
	router.GET("/delivery/companies/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/delivery/companies/"+companyID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	repo.AssertExpectations(t)
}

func TestDeliveryCompanyHandler_GetByID_InvalidID(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	router := setupTestRouter()
	router.GET("/delivery/companies/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/delivery/companies/not-a-uuid", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeliveryCompanyHandler_GetByCode_Success(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	company := createTestCompany()
	repo.On("FindByCode", mock.Anything, "fast").Return(company, nil)

	router := setupTestRouter()
	router.GET("/delivery/companies/code/:code", handler.GetByCode)

	req := httptest.NewRequest(http.MethodGet, "/delivery/companies/code/fast", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestDeliveryCompanyHandler_List_Success(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	companies := []delivery.DeliveryCompany{*createTestCompany()}
	repo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(companies, nil)
	repo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

	router := setupTestRouter()
	router.GET("/delivery/companies", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/delivery/companies?page=1&page_size=10&is_active=true", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.PageSize)
	repo.AssertExpectations(t)
}

func TestDeliveryCompanyHandler_List_InvalidPageSize(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	router := setupTestRouter()
	router.GET("/delivery/companies", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/delivery/companies?page_size=500", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeliveryCompanyHandler_Update_Success(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	company := createTestCompany()
	repo.On("FindByID", mock.Anything, company.ID).Return(company, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*delivery.DeliveryCompany")).Return(nil)

	router := setupTestRouter()
	router.PUT("/delivery/companies/:id", handler.Update)

	req := httptest.NewRequest(http.MethodPut, "/delivery/companies/"+company.ID.String(),
		bytes.NewBufferString(`{"name":"Faster Delivery"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Faster Delivery", data["name"])
	repo.AssertExpectations(t)
}

func TestDeliveryCompanyHandler_SetDefault_Success(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	company := createTestCompany()
	repo.On("FindByID", mock.Anything, company.ID).Return(company, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*delivery.DeliveryCompany")).Return(nil)
	repo.On("ClearDefault", mock.Anything, company.ID).Return(nil)

	router := setupTestRouter()
	router.POST("/delivery/companies/:id/default", handler.SetDefault)

	req := httptest.NewRequest(http.MethodPost, "/delivery/companies/"+company.ID.String()+"/default", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["is_default"])
	repo.AssertExpectations(t)
}

func TestDeliveryCompanyHandler_Delete_Success(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	company := createTestCompany()
	repo.On("FindByID", mock.Anything, company.ID).Return(company, nil)
	repo.On("Delete", mock.Anything, company.ID).Return(nil)

	router := setupTestRouter()
	router.DELETE("/delivery/companies/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/delivery/companies/"+company.ID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	repo.AssertExpectations(t)
}

func TestDeliveryCompanyHandler_Delete_NotFound(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	companyID := uuid.New()
	repo.On("FindByID", mock.Anything, companyID).Return(nil, delivery.ErrCompanyNotFound)

	router := setupTestRouter()
	router.DELETE("/delivery/companies/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/delivery/companies/"+companyID.String(), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	repo.AssertExpectations(t)
}

func TestDeliveryCompanyHandler_ValidateConfiguration(t *testing.T) {
	repo := new(MockDeliveryCompanyRepository)
	handler := setupCompanyHandler(repo)

	company := createTestCompany()
	company.API.BaseURL = ""
	repo.On("FindByID", mock.Anything, company.ID).Return(company, nil)

	router := setupTestRouter()
	router.POST("/delivery/companies/:id/validate", handler.ValidateConfiguration)

	req := httptest.NewRequest(http.MethodPost, "/delivery/companies/"+company.ID.String()+"/validate", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, false, data["ok"])
	assert.NotEmpty(t, data["issues"])
	repo.AssertExpectations(t)
}
