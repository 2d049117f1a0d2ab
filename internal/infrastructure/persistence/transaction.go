package persistence

import (
	"context"

	"github.com/salescrm/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// GormTxManager implements shared.TxManager using GORM transactions.
// The transaction is carried in the context so repositories built on the
// same *gorm.DB join it transparently.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a new GormTxManager.
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// WithinTransaction runs fn inside a database transaction.
// If fn returns an error, the transaction is rolled back.
// Nested calls reuse the outer transaction.
func (m *GormTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction stored in ctx, or db bound to ctx
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// inTx runs fn on the transaction stored in ctx, or opens a new one
func inTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(tx)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Ensure GormTxManager implements TxManager
var _ shared.TxManager = (*GormTxManager)(nil)
