package repository

import (
	"context"

	"bomtree/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductTypeRepository backs the product type existence check.
type ProductTypeRepository interface {
	Create(ctx context.Context, t *model.ProductType) error
	FindByName(ctx context.Context, name string) (*model.ProductType, error)
	List(ctx context.Context) ([]model.ProductType, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type productTypeRepo struct{ db *gorm.DB }

func NewProductTypeRepository(db *gorm.DB) ProductTypeRepository { return &productTypeRepo{db: db} }

func (r *productTypeRepo) Create(ctx context.Context, t *model.ProductType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *productTypeRepo) FindByName(ctx context.Context, name string) (*model.ProductType, error) {
	var t model.ProductType
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *productTypeRepo) List(ctx context.Context) ([]model.ProductType, error) {
	var types []model.ProductType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error
	return types, err
}

func (r *productTypeRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProductType{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
