package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// MaterialLineDefinition declares one BOM row of a candidate node.
type MaterialLineDefinition struct {
	MaterialID string          `json:"material_id" validate:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity"    validate:"required,gt=0"`
	Unit       string          `json:"unit"`
}

// PropertyDefinition declares a key/value attached to a candidate node.
type PropertyDefinition struct {
	Key   string `json:"key"   validate:"required,min=1,max=64"`
	Value string `json:"value" validate:"required"`
}

// NodeDefinition is one node of a candidate tree, nested recursively.
// ID may be pinned by offline-capable clients; when present it participates
// in cycle detection before any row is written. AmountInParent must be absent
// on the root of a new composition and strictly positive everywhere else.
type NodeDefinition struct {
	ID              *string                  `json:"id"               validate:"omitempty,uuid"`
	Name            string                   `json:"name"             validate:"required,min=2,max=120"`
	Description     *string                  `json:"description"`
	AmountInParent  *decimal.Decimal         `json:"amount_in_parent"`
	BillOfMaterials []MaterialLineDefinition `json:"bill_of_materials" validate:"dive"`
	Properties      []PropertyDefinition     `json:"properties"        validate:"dive"`
	Components      []NodeDefinition         `json:"components"        validate:"dive"`
}

type CreateCompositionRequest struct {
	OwnerID       string         `json:"owner_id"        validate:"required,uuid"`
	ProductTypeID *string        `json:"product_type_id" validate:"omitempty,uuid"`
	Definition    NodeDefinition `json:"definition"      validate:"required"`
}

type AddComponentRequest struct {
	Definition NodeDefinition `json:"definition" validate:"required"`
}

// UpdateNodeRequest carries scalar-only edits; structure is never changed here.
type UpdateNodeRequest struct {
	Name          *string `json:"name"            validate:"omitempty,min=2,max=120"`
	Description   *string `json:"description"`
	ProductTypeID *string `json:"product_type_id" validate:"omitempty,uuid"`
}

// ─── Query DTOs ──────────────────────────────────────────────────────────────

// SubtreeFilter bounds how many nested component levels are materialized.
// Values above the service maximum are clamped, not rejected.
type SubtreeFilter struct {
	Depth int `form:"depth,default=5" validate:"min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MaterialLineResponse struct {
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
}

type PropertyResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TreeView is a depth-bounded rendering of a stored subtree. Components is
// always an empty list beyond the requested depth, regardless of how deep
// the underlying tree actually is.
type TreeView struct {
	ID              string                 `json:"id"`
	ParentID        *string                `json:"parent_id"`
	AmountInParent  *decimal.Decimal       `json:"amount_in_parent"`
	OwnerID         string                 `json:"owner_id"`
	ProductTypeID   *string                `json:"product_type_id"`
	Name            string                 `json:"name"`
	Description     *string                `json:"description"`
	BillOfMaterials []MaterialLineResponse `json:"bill_of_materials"`
	Components      []TreeView             `json:"components"`
}

type NodeCreatedResponse struct {
	ID string `json:"id"`
}

type TreeListResponse struct {
	Data  []TreeView `json:"data"`
	Total int        `json:"total"`
}
