package repository

import (
	"context"

	"bomtree/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnerRepository backs the owner existence check and minimal owner CRUD.
type OwnerRepository interface {
	Create(ctx context.Context, o *model.Owner) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Owner, error)
	FindByEmail(ctx context.Context, email string) (*model.Owner, error)
	List(ctx context.Context) ([]model.Owner, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type ownerRepo struct{ db *gorm.DB }

func NewOwnerRepository(db *gorm.DB) OwnerRepository { return &ownerRepo{db: db} }

func (r *ownerRepo) Create(ctx context.Context, o *model.Owner) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *ownerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Owner, error) {
	var o model.Owner
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ownerRepo) FindByEmail(ctx context.Context, email string) (*model.Owner, error) {
	var o model.Owner
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ownerRepo) List(ctx context.Context) ([]model.Owner, error) {
	var owners []model.Owner
	err := r.db.WithContext(ctx).Order("name ASC").Find(&owners).Error
	return owners, err
}

func (r *ownerRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Owner{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
