package receipt

import "github.com/ctrlfund/ctrlfund/internal"

type CreateReceiptDTO struct {
	FileName    string   `json:"file_name"`
	FileType    string   `json:"file_type"`
	FileSize    int64    `json:"file_size"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	DataURL     string   `json:"data_url"`
}

func (dto CreateReceiptDTO) Validate() error {
	if dto.FileName == "" {
		return internal.NewValidationFieldError("file_name", "file name is required", internal.ErrCodeValidationFailed)
	}
	if !dto.Category.Valid() {
		return internal.NewValidationFieldError("category", "category must be Sponsor, Education, College or Other", internal.ErrCodeInvalidCategory)
	}
	if dto.DataURL == "" {
		return internal.NewValidationFieldError("data_url", "file content is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateReceiptDTO patches the describable fields; the file itself is immutable.
type UpdateReceiptDTO struct {
	Description *string   `json:"description,omitempty"`
	Category    *Category `json:"category,omitempty"`
}

func (dto UpdateReceiptDTO) Validate() error {
	if dto.Category != nil && !dto.Category.Valid() {
		return internal.NewValidationFieldError("category", "category must be Sponsor, Education, College or Other", internal.ErrCodeInvalidCategory)
	}
	return nil
}
