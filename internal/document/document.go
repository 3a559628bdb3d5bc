package document

import "time"

const storageKey = "ctrlfund_documents"

type Category string

const (
	CategoryMOU      Category = "MOU"
	CategoryDeal     Category = "Deal"
	CategoryContract Category = "Contract"
	CategoryOther    Category = "Other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMOU, CategoryDeal, CategoryContract, CategoryOther:
		return true
	}
	return false
}

// Document is a shared file visible to every identity. UploadedBy
// carries the uploader's display name, not an id, because the list is
// rendered as-is.
type Document struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	Category   Category  `json:"category"`
	UploadedBy string    `json:"uploaded_by"`
	DataURL    string    `json:"data_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ProtectedChecker answers whether an identity is the protected admin.
type ProtectedChecker interface {
	IsProtectedIdentity(id string) bool
}
