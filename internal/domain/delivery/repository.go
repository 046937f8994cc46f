package delivery

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
)

// OrderRepository provides access to the dispatch-relevant order records.
// The broader order lifecycle is owned by the storefront; this service only
// reads orders and persists their delivery fields.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, order *Order) error
}

// DeliveryCompanyRepository provides access to courier configurations.
type DeliveryCompanyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DeliveryCompany, error)
	FindByCode(ctx context.Context, code string) (*DeliveryCompany, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]DeliveryCompany, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// FindDefault returns the company marked default, or ErrCompanyNotFound
	FindDefault(ctx context.Context) (*DeliveryCompany, error)
	// FindAutoDispatchCandidate returns the first active auto-dispatch
	// company eligible for the given order status, or ErrCompanyNotFound
	FindAutoDispatchCandidate(ctx context.Context, orderStatus string) (*DeliveryCompany, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, company *DeliveryCompany) error
	// ClearDefault unsets the default flag on every company except the given one
	ClearDefault(ctx context.Context, exceptID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
