package delivery

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	domain "github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/shared"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockCompanyRepository is a mock implementation of DeliveryCompanyRepository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.DeliveryCompany, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeliveryCompany), args.Error(1)
}

func (m *MockCompanyRepository) FindByCode(ctx context.Context, code string) (*domain.DeliveryCompany, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeliveryCompany), args.Error(1)
}

func (m *MockCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]domain.DeliveryCompany, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DeliveryCompany), args.Error(1)
}

func (m *MockCompanyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCompanyRepository) FindDefault(ctx context.Context) (*domain.DeliveryCompany, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeliveryCompany), args.Error(1)
}

func (m *MockCompanyRepository) FindAutoDispatchCandidate(ctx context.Context, orderStatus string) (*domain.DeliveryCompany, error) {
	args := m.Called(ctx, orderStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeliveryCompany), args.Error(1)
}

func (m *MockCompanyRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockCompanyRepository) Save(ctx context.Context, company *domain.DeliveryCompany) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) ClearDefault(ctx context.Context, exceptID uuid.UUID) error {
	args := m.Called(ctx, exceptID)
	return args.Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// stubGateway records every courier request and answers from a function.
type stubGateway struct {
	calls []*domain.CourierRequest
	send  func(req *domain.CourierRequest) (*domain.DispatchResult, error)
}

func (g *stubGateway) Send(_ context.Context, req *domain.CourierRequest) (*domain.DispatchResult, error) {
	g.calls = append(g.calls, req)
	return g.send(req)
}

// stubGuard is a DispatchGuard answering a fixed acquisition result.
type stubGuard struct {
	acquired bool
	releases int
}

func (g *stubGuard) Acquire(context.Context, uuid.UUID) (bool, error) { return g.acquired, nil }
func (g *stubGuard) Release(context.Context, uuid.UUID) error {
	g.releases++
	return nil
}
