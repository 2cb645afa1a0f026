package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompositionNode is one product or component in a composition tree.
// ParentID == nil marks a root (a base product). AmountInParent states how
// many units of this node are embedded in one unit of its parent; it must be
// nil exactly when ParentID is nil and strictly positive otherwise.
// OwnerID is denormalized onto every node of a tree (always the root's owner)
// so ownership checks never need a tree walk.
type CompositionNode struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ParentID       *uuid.UUID       `gorm:"type:uuid;index"`
	AmountInParent *decimal.Decimal `gorm:"type:decimal(15,4)"`
	OwnerID        uuid.UUID        `gorm:"type:uuid;index;not null"`
	ProductTypeID  *uuid.UUID       `gorm:"type:uuid;index"`
	Name           string           `gorm:"not null"`
	Description    *string
	// Position orders siblings under the same parent.
	Position  int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Parent          *CompositionNode  `gorm:"foreignKey:ParentID"`
	Components      []CompositionNode `gorm:"foreignKey:ParentID"`
	BillOfMaterials []MaterialLine    `gorm:"foreignKey:NodeID"`
	Properties      []NodeProperty    `gorm:"foreignKey:NodeID"`

	Owner       *Owner       `gorm:"foreignKey:OwnerID"`
	ProductType *ProductType `gorm:"foreignKey:ProductTypeID"`
}

func (CompositionNode) TableName() string { return "composition_nodes" }

// IsRoot reports whether the node is the base product of its tree.
func (n *CompositionNode) IsRoot() bool { return n.ParentID == nil }
