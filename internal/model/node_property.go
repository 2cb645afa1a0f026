package model

import (
	"time"

	"github.com/google/uuid"
)

// NodeProperty is a free-form key/value attached to a single composition node.
// Properties are owned exclusively by the node, never shared, and are deleted
// together with it when a subtree is removed.
type NodeProperty struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NodeID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Key       string    `gorm:"not null"`
	Value     string    `gorm:"not null"`
	CreatedAt time.Time
}

func (NodeProperty) TableName() string { return "node_properties" }
