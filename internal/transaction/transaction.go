package transaction

import (
	"time"
)

// Transaction is a remote-synchronized record. The backend copy is
// authoritative; writes are overlaid locally until the change feed
// echoes them back.
type Transaction struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"column:user_id;index;not null" json:"user_id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Amount      float64   `gorm:"column:amount;not null" json:"amount"`
	Category    string    `gorm:"column:category" json:"category"`
	Date        string    `gorm:"column:date" json:"date"`
	Description string    `gorm:"column:description" json:"description"`
	IsArchived  bool      `gorm:"column:is_archived" json:"is_archived"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }

// Repository defines the data access methods for transactions
type Repository interface {
	Create(tx *Transaction) error
	GetByID(id string) (*Transaction, error)
	GetByUserID(userID string) ([]*Transaction, error)
	Update(tx *Transaction) error
	Delete(id string) error
}

// Stats summarizes the caller's non-archived transactions.
type Stats struct {
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
}
