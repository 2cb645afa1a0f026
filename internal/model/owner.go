package model

import (
	"time"

	"github.com/google/uuid"
)

// Owner is the actor that owns composition trees. Ownership is stamped on
// every node of a tree at creation time.
type Owner struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Owner) TableName() string { return "owners" }
