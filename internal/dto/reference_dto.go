package dto

import "github.com/google/uuid"

// ─── Materials ───────────────────────────────────────────────────────────────

type CreateMaterialRequest struct {
	Name        string  `json:"name"         validate:"required,min=2,max=120"`
	Description *string `json:"description"`
	DefaultUnit string  `json:"default_unit"`
}

type MaterialResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	DefaultUnit string    `json:"default_unit"`
}

// ─── Owners ──────────────────────────────────────────────────────────────────

type CreateOwnerRequest struct {
	Name  string `json:"name"  validate:"required,min=2,max=120"`
	Email string `json:"email" validate:"required,email"`
}

type OwnerResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ─── Product types ───────────────────────────────────────────────────────────

type CreateProductTypeRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description *string `json:"description"`
}

type ProductTypeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
}
