package identity

import (
	"context"
	"time"

	"github.com/ctrlfund/ctrlfund/internal/permission"
)

// DefaultAdminEmail is the address the protected bootstrap admin is
// created under when the store is empty.
const DefaultAdminEmail = "admin@ctrlfund.com"

const DefaultAdminName = "CtrlFund Admin"

// Identity is a user account. Permission sets are never stored on it;
// they are derived from Role, IsActive and the override columns on
// every read.
type Identity struct {
	ID           string          `gorm:"primaryKey" json:"id"`
	Email        string          `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Name         string          `gorm:"column:name;not null" json:"name"`
	Role         permission.Role `gorm:"column:role;not null" json:"role"`
	IsActive     bool            `gorm:"column:is_active" json:"is_active"`
	IsProtected  bool            `gorm:"column:is_protected" json:"is_protected"`
	PasswordHash string          `gorm:"column:password_hash" json:"-"`

	OverrideEditTransactions *bool `gorm:"column:override_edit_transactions" json:"-"`
	OverrideUploadReceipts   *bool `gorm:"column:override_upload_receipts" json:"-"`
	OverrideEditNotes        *bool `gorm:"column:override_edit_notes" json:"-"`

	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	LastLoginAt *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
}

func (Identity) TableName() string { return "identities" }

func (i *Identity) Overrides() permission.Overrides {
	return permission.Overrides{
		EditTransactions: i.OverrideEditTransactions,
		UploadReceipts:   i.OverrideUploadReceipts,
		EditNotes:        i.OverrideEditNotes,
	}
}

func (i *Identity) SetOverrides(o permission.Overrides) {
	i.OverrideEditTransactions = o.EditTransactions
	i.OverrideUploadReceipts = o.UploadReceipts
	i.OverrideEditNotes = o.EditNotes
}

// Permissions derives the effective capability set.
func (i *Identity) Permissions() permission.Set {
	return permission.Resolve(i.Role, i.IsActive, i.Overrides())
}

type Repository interface {
	Create(identity *Identity) error
	GetByID(id string) (*Identity, error)
	GetByEmail(email string) (*Identity, error)
	Update(identity *Identity) error
	Delete(id string) error
	GetAll() ([]*Identity, error)
	Count() (int64, error)
}

// ProviderProfile is what a federated identity provider asserts about
// the person at the other end.
type ProviderProfile struct {
	Subject string
	Email   string
	Name    string
}

// Provider is the pluggable federated login boundary.
type Provider interface {
	Profile(ctx context.Context) (ProviderProfile, error)
}
