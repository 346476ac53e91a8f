package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/inkwell/internal/entities"
)

// TransactionContext is the persistence context handed to the legacy import
// engine. Inserts land in the current transaction immediately and become
// durable at the next Save. Save commits the open transaction and begins a
// fresh one, so a long-running import can flush batches without holding an
// unbounded change set in memory.
//
// Rollback discards only the *uncommitted* transaction. Work committed by
// earlier Save calls stays committed: the import is committed-so-far, not
// atomic across its whole duration.
type TransactionContext struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewTransactionContext(db *gorm.DB) (*TransactionContext, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	return &TransactionContext{db: db, tx: tx}, nil
}

// Insert adds an entity to the current transaction.
func (c *TransactionContext) Insert(entity any) error {
	return c.tx.Create(entity).Error
}

// ProjectExists reports whether a project with the given name is already
// present, counting both committed rows and rows inserted in the current
// transaction.
func (c *TransactionContext) ProjectExists(name string) (bool, error) {
	var count int64
	err := c.tx.Model(&entities.Project{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save commits the open transaction and begins the next one.
func (c *TransactionContext) Save() error {
	if err := c.tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	tx := c.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	c.tx = tx
	return nil
}

// Rollback discards the open transaction.
func (c *TransactionContext) Rollback() error {
	return c.tx.Rollback().Error
}
