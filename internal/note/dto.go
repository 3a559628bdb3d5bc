package note

import "github.com/ctrlfund/ctrlfund/internal"

type CreateNoteDTO struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (dto CreateNoteDTO) Validate() error {
	if dto.Title == "" {
		return internal.NewValidationFieldError("title", "title is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateNoteDTO is a partial patch. Nil fields are left untouched.
type UpdateNoteDTO struct {
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	IsArchived *bool   `json:"is_archived,omitempty"`
}

func (dto UpdateNoteDTO) Validate() error {
	if dto.Title != nil && *dto.Title == "" {
		return internal.NewValidationFieldError("title", "title cannot be empty", internal.ErrCodeValidationFailed)
	}
	return nil
}
