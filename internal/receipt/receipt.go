package receipt

import "time"

const storageKey = "ctrlfund_receipts"

type Category string

const (
	CategorySponsor   Category = "Sponsor"
	CategoryEducation Category = "Education"
	CategoryCollege   Category = "College"
	CategoryOther     Category = "Other"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySponsor, CategoryEducation, CategoryCollege, CategoryOther:
		return true
	}
	return false
}

// Receipt is an uploaded file kept device-local as a data URL.
type Receipt struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	FileSize    int64     `json:"file_size"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	DataURL     string    `json:"data_url"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ProtectedChecker answers whether an identity is the protected admin.
// Receipt deletion is restricted to it.
type ProtectedChecker interface {
	IsProtectedIdentity(id string) bool
}
