package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ctrlfund/ctrlfund/internal/identity"
)

// IdentityRepository implements identity.Repository using GORM
type IdentityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) identity.Repository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) Create(ident *identity.Identity) error {
	return r.db.Create(ident).Error
}

func (r *IdentityRepository) GetByID(id string) (*identity.Identity, error) {
	var ident identity.Identity
	err := r.db.Where("id = ?", id).First(&ident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &ident, nil
}

func (r *IdentityRepository) GetByEmail(email string) (*identity.Identity, error) {
	var ident identity.Identity
	err := r.db.Where("email = ?", email).First(&ident).Error
	if err != nil {
		return nil, err
	}
	return &ident, nil
}

func (r *IdentityRepository) Update(ident *identity.Identity) error {
	return r.db.Save(ident).Error
}

func (r *IdentityRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&identity.Identity{}).Error
}

func (r *IdentityRepository) GetAll() ([]*identity.Identity, error) {
	var identities []*identity.Identity
	err := r.db.Order("created_at ASC").Find(&identities).Error
	return identities, err
}

func (r *IdentityRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&identity.Identity{}).Count(&count).Error
	return count, err
}
