package persistence

import (
	"context"

	"gorm.io/gorm"

	appdelivery "github.com/storefront/backend/internal/application/delivery"
)

// GormTransactionScope implements the application TransactionScope using
// GORM transactions, so that assigning a dispatch result to an order and
// any related writes commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction. The
// repositories handed to fn are scoped to the transaction; if fn returns an
// error the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context, repos appdelivery.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := appdelivery.Repositories{
			Orders:    NewGormOrderRepository(tx),
			Companies: NewGormDeliveryCompanyRepository(tx),
		}
		return fn(ctx, repos)
	})
}

// Ensure GormTransactionScope implements TransactionScope
var _ appdelivery.TransactionScope = (*GormTransactionScope)(nil)
