package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductType is an optional classification for composition nodes.
type ProductType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProductType) TableName() string { return "product_types" }
