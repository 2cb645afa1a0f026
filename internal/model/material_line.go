package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialLine is one bill-of-materials row: the owning node consumes
// Quantity Unit of the referenced material per single unit of the node.
// Lines are owned exclusively by their node and are removed with it.
type MaterialLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NodeID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	MaterialID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(15,4);not null"`
	Unit       string          `gorm:"not null;default:'unit'"`
	Position   int             `gorm:"not null;default:0"`

	Material *Material `gorm:"foreignKey:MaterialID"`
}

func (MaterialLine) TableName() string { return "material_lines" }
