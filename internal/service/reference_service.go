package service

import (
	"context"
	"errors"

	"bomtree/internal/dto"
	"bomtree/internal/model"
	"bomtree/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reference-data services: the rows the composition builder existence-checks
// against. Deliberately thin — the tree engine is the interesting part.

// ─── Materials ───────────────────────────────────────────────────────────────

type MaterialService interface {
	Create(ctx context.Context, req dto.CreateMaterialRequest) (dto.MaterialResponse, error)
	Get(ctx context.Context, id uuid.UUID) (dto.MaterialResponse, error)
	List(ctx context.Context) ([]dto.MaterialResponse, error)
}

type materialService struct {
	repo repository.MaterialRepository
}

func NewMaterialService(repo repository.MaterialRepository) MaterialService {
	return &materialService{repo: repo}
}

func mapMaterial(m model.Material) dto.MaterialResponse {
	return dto.MaterialResponse{ID: m.ID, Name: m.Name, Description: m.Description, DefaultUnit: m.DefaultUnit}
}

func (s *materialService) Create(ctx context.Context, req dto.CreateMaterialRequest) (dto.MaterialResponse, error) {
	existing, err := s.repo.FindByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.MaterialResponse{}, err
	}
	if existing != nil {
		return dto.MaterialResponse{}, &IntegrityError{Op: "create material", Err: errors.New("name already taken")}
	}

	unit := req.DefaultUnit
	if unit == "" {
		unit = "unit"
	}
	m := &model.Material{Name: req.Name, Description: req.Description, DefaultUnit: unit}
	if err := s.repo.Create(ctx, m); err != nil {
		return dto.MaterialResponse{}, err
	}
	return mapMaterial(*m), nil
}

func (s *materialService) Get(ctx context.Context, id uuid.UUID) (dto.MaterialResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.MaterialResponse{}, notFoundOr(err, "material", id)
	}
	return mapMaterial(*m), nil
}

func (s *materialService) List(ctx context.Context) ([]dto.MaterialResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		result = append(result, mapMaterial(m))
	}
	return result, nil
}

// ─── Owners ──────────────────────────────────────────────────────────────────

type OwnerService interface {
	Create(ctx context.Context, req dto.CreateOwnerRequest) (dto.OwnerResponse, error)
	List(ctx context.Context) ([]dto.OwnerResponse, error)
}

type ownerService struct {
	repo repository.OwnerRepository
}

func NewOwnerService(repo repository.OwnerRepository) OwnerService {
	return &ownerService{repo: repo}
}

func (s *ownerService) Create(ctx context.Context, req dto.CreateOwnerRequest) (dto.OwnerResponse, error) {
	existing, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.OwnerResponse{}, err
	}
	if existing != nil {
		return dto.OwnerResponse{}, &IntegrityError{Op: "create owner", Err: errors.New("email already registered")}
	}

	o := &model.Owner{Name: req.Name, Email: req.Email}
	if err := s.repo.Create(ctx, o); err != nil {
		return dto.OwnerResponse{}, err
	}
	return dto.OwnerResponse{ID: o.ID, Name: o.Name, Email: o.Email}, nil
}

func (s *ownerService) List(ctx context.Context) ([]dto.OwnerResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.OwnerResponse, 0, len(list))
	for _, o := range list {
		result = append(result, dto.OwnerResponse{ID: o.ID, Name: o.Name, Email: o.Email})
	}
	return result, nil
}

// ─── Product types ───────────────────────────────────────────────────────────

type ProductTypeService interface {
	Create(ctx context.Context, req dto.CreateProductTypeRequest) (dto.ProductTypeResponse, error)
	List(ctx context.Context) ([]dto.ProductTypeResponse, error)
}

type productTypeService struct {
	repo repository.ProductTypeRepository
}

func NewProductTypeService(repo repository.ProductTypeRepository) ProductTypeService {
	return &productTypeService{repo: repo}
}

func (s *productTypeService) Create(ctx context.Context, req dto.CreateProductTypeRequest) (dto.ProductTypeResponse, error) {
	existing, err := s.repo.FindByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ProductTypeResponse{}, err
	}
	if existing != nil {
		return dto.ProductTypeResponse{}, &IntegrityError{Op: "create product type", Err: errors.New("name already taken")}
	}

	t := &model.ProductType{Name: req.Name, Description: req.Description}
	if err := s.repo.Create(ctx, t); err != nil {
		return dto.ProductTypeResponse{}, err
	}
	return dto.ProductTypeResponse{ID: t.ID, Name: t.Name, Description: t.Description}, nil
}

func (s *productTypeService) List(ctx context.Context) ([]dto.ProductTypeResponse, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ProductTypeResponse, 0, len(list))
	for _, t := range list {
		result = append(result, dto.ProductTypeResponse{ID: t.ID, Name: t.Name, Description: t.Description})
	}
	return result, nil
}
