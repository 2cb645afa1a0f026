package model

import (
	"time"

	"github.com/google/uuid"
)

// Material is a raw material that BOM lines reference.
type Material struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description *string
	// DefaultUnit is used when a BOM line omits its unit.
	DefaultUnit string `gorm:"not null;default:'unit'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Material) TableName() string { return "materials" }
