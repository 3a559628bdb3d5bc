package document

import "github.com/ctrlfund/ctrlfund/internal"

type CreateDocumentDTO struct {
	FileName string   `json:"file_name"`
	FileType string   `json:"file_type"`
	FileSize int64    `json:"file_size"`
	Category Category `json:"category"`
	DataURL  string   `json:"data_url"`
}

func (dto CreateDocumentDTO) Validate() error {
	if dto.FileName == "" {
		return internal.NewValidationFieldError("file_name", "file name is required", internal.ErrCodeValidationFailed)
	}
	if !dto.Category.Valid() {
		return internal.NewValidationFieldError("category", "category must be MOU, Deal, Contract or Other", internal.ErrCodeInvalidCategory)
	}
	if dto.DataURL == "" {
		return internal.NewValidationFieldError("data_url", "file content is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateDocumentDTO struct {
	Category *Category `json:"category,omitempty"`
}

func (dto UpdateDocumentDTO) Validate() error {
	if dto.Category != nil && !dto.Category.Valid() {
		return internal.NewValidationFieldError("category", "category must be MOU, Deal, Contract or Other", internal.ErrCodeInvalidCategory)
	}
	return nil
}
