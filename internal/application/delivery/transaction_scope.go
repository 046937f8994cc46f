package delivery

import (
	"context"

	domain "github.com/storefront/backend/internal/domain/delivery"
)

// Repositories bundles the repositories participating in one transaction.
type Repositories struct {
	Orders    domain.OrderRepository
	Companies domain.DeliveryCompanyRepository
}

// TransactionScope runs a function against transaction-bound repositories.
// The transaction commits when fn returns nil and rolls back otherwise.
// Dispatch network calls happen before the scope is entered, so a failed
// commit can leave a booked shipment with no local record; that asymmetry is
// accepted and surfaced to the caller as the scope's error.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// NoTxScope satisfies TransactionScope without transactional semantics.
// Used in tests and for backends that do not support transactions.
type NoTxScope struct {
	Repos Repositories
}

// Execute runs fn directly against the configured repositories.
func (s NoTxScope) Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return fn(ctx, s.Repos)
}

var _ TransactionScope = NoTxScope{}
