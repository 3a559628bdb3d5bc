package transaction

import (
	"time"

	"github.com/ctrlfund/ctrlfund/internal"
)

// CreateTransactionDTO represents the request payload for creating a transaction
type CreateTransactionDTO struct {
	Title       string  `json:"title"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

func (dto CreateTransactionDTO) Validate() error {
	if dto.Title == "" {
		return internal.NewValidationFieldError("title", "title is required", internal.ErrCodeValidationFailed)
	}
	if dto.Amount <= 0 {
		return internal.NewValidationFieldError("amount", "amount must be greater than 0", internal.ErrCodeInvalidAmount)
	}
	if dto.Category == "" {
		return internal.NewValidationFieldError("category", "category is required", internal.ErrCodeInvalidCategory)
	}
	if dto.Date != "" {
		if _, err := time.Parse("2006-01-02", dto.Date); err != nil {
			return internal.NewValidationFieldError("date", "date must be an ISO day (YYYY-MM-DD)", internal.ErrCodeInvalidDate)
		}
	}
	return nil
}

// UpdateTransactionDTO is a partial patch. Nil fields are left untouched.
type UpdateTransactionDTO struct {
	Title       *string  `json:"title,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Description *string  `json:"description,omitempty"`
	IsArchived  *bool    `json:"is_archived,omitempty"`
}

func (dto UpdateTransactionDTO) Validate() error {
	if dto.Title != nil && *dto.Title == "" {
		return internal.NewValidationFieldError("title", "title cannot be empty", internal.ErrCodeValidationFailed)
	}
	if dto.Amount != nil && *dto.Amount <= 0 {
		return internal.NewValidationFieldError("amount", "amount must be greater than 0", internal.ErrCodeInvalidAmount)
	}
	if dto.Date != nil && *dto.Date != "" {
		if _, err := time.Parse("2006-01-02", *dto.Date); err != nil {
			return internal.NewValidationFieldError("date", "date must be an ISO day (YYYY-MM-DD)", internal.ErrCodeInvalidDate)
		}
	}
	return nil
}

// BulkCreateDTO carries an ordered batch. Items are committed one at a
// time and the batch stops at the first failure.
type BulkCreateDTO struct {
	Items []CreateTransactionDTO `json:"items"`
}

// BulkCreateResult reports how far a batch got.
type BulkCreateResult struct {
	Created     []*Transaction `json:"created"`
	FailedIndex *int           `json:"failed_index,omitempty"`
	FailedError string         `json:"failed_error,omitempty"`
}
