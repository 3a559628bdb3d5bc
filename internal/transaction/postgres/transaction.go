package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ctrlfund/ctrlfund/internal/transaction"
)

// TransactionRepository implements transaction.Repository using GORM
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) transaction.Repository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(tx *transaction.Transaction) error {
	return r.db.Create(tx).Error
}

func (r *TransactionRepository) GetByID(id string) (*transaction.Transaction, error) {
	var tx transaction.Transaction
	err := r.db.Where("id = ?", id).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) GetByUserID(userID string) ([]*transaction.Transaction, error) {
	var txs []*transaction.Transaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}

func (r *TransactionRepository) Update(tx *transaction.Transaction) error {
	tx.UpdatedAt = time.Now()
	return r.db.Save(tx).Error
}

func (r *TransactionRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&transaction.Transaction{}).Error
}
